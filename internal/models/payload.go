package models

// Payload keys sent by the device.
const (
	KeyTemp = "temp"
	KeyHumi = "humi"
	KeyLumi = "lumi"
)

// Payload is the raw body a device posts to /update, decoded as a JSON object
// with numbers kept as json.Number. A key missing from the map was not sent;
// a key mapped to nil was sent as JSON null.
type Payload map[string]any

// Has reports whether key was sent, whatever its value.
func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}
