package marker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/datanode/internal/core/domain"
	"go.trai.ch/zerr"
)

// Marker kinds stored in the envelope.
const (
	kindNode = "node"
	kindTask = "task"
)

// Task record states. "pending" is a declared task that was never started.
const (
	statePending   = "pending"
	stateRunning   = "running"
	stateCompleted = "completed"
	stateFailed    = "failed"
)

// envelope is the versioned, checksummed wrapper written to every marker file.
type envelope struct {
	Schema   int             `json:"schema"`
	Kind     string          `json:"kind"`
	Checksum string          `json:"checksum"`
	Record   json.RawMessage `json:"record"`
}

// nodeRecord is the payload of a node marker.
type nodeRecord struct {
	Name      string    `json:"name"`
	Class     string    `json:"class,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// taskRecord is the payload of a task marker.
type taskRecord struct {
	State     string        `json:"state"`
	Owner     *domain.Owner `json:"owner,omitempty"`
	Token     string        `json:"token,omitempty"`
	StartedAt time.Time     `json:"started_at,omitzero"`
	EndedAt   time.Time     `json:"ended_at,omitzero"`
	Error     string        `json:"error,omitempty"`
}

// checksum returns the xxhash64 of the compacted record bytes as hex.
func checksum(record []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, record); err != nil {
		return "", err
	}
	return strconv.FormatUint(xxhash.Sum64(buf.Bytes()), 16), nil
}

// encodeMarker wraps record in an envelope of the given kind.
func encodeMarker(kind string, record any) ([]byte, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode marker record")
	}
	sum, err := checksum(raw)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to checksum marker record")
	}

	data, err := json.MarshalIndent(envelope{
		Schema:   domain.MarkerSchemaVersion,
		Kind:     kind,
		Checksum: sum,
		Record:   raw,
	}, "", "  ")
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode marker envelope")
	}
	return append(data, '\n'), nil
}

// decodeMarker validates the envelope in data and strictly decodes its record into dst.
// Every failure is rooted at domain.ErrCorruptMarker.
func decodeMarker(data []byte, kind string, dst any) error {
	var env envelope
	if err := decodeStrict(data, &env); err != nil {
		return corrupt("invalid envelope", err)
	}

	if env.Schema != domain.MarkerSchemaVersion {
		return zerr.With(zerr.Wrap(domain.ErrUnsupportedSchema, "cannot decode marker"), "schema", env.Schema)
	}
	if env.Kind != kind {
		return corrupt(fmt.Sprintf("expected a %s marker, found %q", kind, env.Kind), nil)
	}
	if len(env.Record) == 0 {
		return corrupt("missing record", nil)
	}

	sum, err := checksum(env.Record)
	if err != nil {
		return corrupt("invalid record", err)
	}
	if sum != env.Checksum {
		return corrupt("checksum mismatch", nil)
	}

	if err := decodeStrict(env.Record, dst); err != nil {
		return corrupt("invalid record", err)
	}
	return nil
}

// decodeStrict rejects unknown fields and trailing content.
func decodeStrict(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return zerr.New("trailing content")
	}
	return nil
}

func corrupt(reason string, cause error) error {
	if cause != nil {
		reason = reason + ": " + cause.Error()
	}
	return zerr.Wrap(domain.ErrCorruptMarker, reason)
}

// validate checks the invariants of a decoded task record.
func (r taskRecord) validate() error {
	switch r.State {
	case statePending:
		return nil
	case stateRunning:
		if r.Owner == nil || r.Token == "" {
			return corrupt("running marker without owner or token", nil)
		}
		return nil
	case stateCompleted, stateFailed:
		if r.Token == "" {
			return corrupt("terminal marker without token", nil)
		}
		return nil
	default:
		return corrupt(fmt.Sprintf("unknown task state %q", r.State), nil)
	}
}

// outcomeState maps a finalize outcome to the record state.
func outcomeState(o domain.Outcome) string {
	if o == domain.OutcomeCompleted {
		return stateCompleted
	}
	return stateFailed
}
