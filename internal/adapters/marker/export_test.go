package marker

// Exported helpers for black-box tests.
var (
	EncodeMarker = encodeMarker
	DecodeMarker = decodeMarker
	AcquireGuard = acquireGuard
)

// Marker kinds.
const (
	KindNode = kindNode
	KindTask = kindTask
)
