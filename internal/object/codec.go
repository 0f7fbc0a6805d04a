package object

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/roach88/mergers/internal/ir"
)

// Built-in type names.
const (
	TypeHistogram = "histogram"
	TypeCounter   = "counter"
	TypeTally     = "tally"
)

// Factory returns a zero object ready to be decoded into.
type Factory func() Object

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{
		TypeHistogram: func() Object { return &Histogram{} },
		TypeCounter:   func() Object { return &Counter{} },
		TypeTally:     func() Object { return &Tally{} },
	}
)

// Register adds a decodable object type. It panics on duplicates, like
// database/sql.Register, since registration happens from init.
func Register(typeName string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[typeName]; dup {
		panic("object: Register called twice for type " + typeName)
	}
	registry[typeName] = f
}

func lookup(typeName string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[typeName]
	return f, ok
}

// envelope is the serialized form of one object.
type envelope struct {
	Type   string          `json:"type"`
	Object json.RawMessage `json:"object"`
}

func encodeObject(o Object) (envelope, error) {
	if o == nil {
		return envelope{}, fmt.Errorf("encode: nil object")
	}
	data, err := json.Marshal(o)
	if err != nil {
		return envelope{}, fmt.Errorf("encode %s: %w", o.TypeName(), err)
	}
	return envelope{Type: o.TypeName(), Object: data}, nil
}

func decodeObject(env envelope) (Object, error) {
	f, ok := lookup(env.Type)
	if !ok {
		return nil, fmt.Errorf("%w: unknown type %q", ErrUnsupportedObject, env.Type)
	}
	o := f()
	if err := json.Unmarshal(env.Object, o); err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return o, nil
}

// Encode serializes a non-empty representation and reports its kind.
func Encode(rep Representation) (ir.Kind, []byte, error) {
	switch r := rep.(type) {
	case Single:
		env, err := encodeObject(r.Object)
		if err != nil {
			return ir.KindUnknown, nil, err
		}
		data, err := json.Marshal(env)
		return ir.KindSingle, data, err
	case Custom:
		if r.Object == nil {
			return ir.KindUnknown, nil, fmt.Errorf("encode: nil custom object")
		}
		env, err := encodeObject(r.Object)
		if err != nil {
			return ir.KindUnknown, nil, err
		}
		data, err := json.Marshal(env)
		return ir.KindCustom, data, err
	case Collection:
		envs := make([]envelope, 0, len(r.Objects))
		for i, o := range r.Objects {
			env, err := encodeObject(o)
			if err != nil {
				return ir.KindUnknown, nil, fmt.Errorf("collection[%d]: %w", i, err)
			}
			envs = append(envs, env)
		}
		data, err := json.Marshal(envs)
		return ir.KindCollection, data, err
	default:
		return ir.KindUnknown, nil, ErrEmpty
	}
}

// Decode rebuilds a representation of the given kind. Each call returns
// fresh objects; body is only read.
func Decode(kind ir.Kind, body []byte) (Representation, error) {
	switch kind {
	case ir.KindSingle:
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("decode single: %w", err)
		}
		o, err := decodeObject(env)
		if err != nil {
			return nil, err
		}
		return Single{Object: o}, nil
	case ir.KindCustom:
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("decode custom: %w", err)
		}
		o, err := decodeObject(env)
		if err != nil {
			return nil, err
		}
		mi, ok := o.(MergeInterface)
		if !ok {
			return nil, fmt.Errorf("%w: %s does not implement MergeInterface", ErrUnsupportedObject, env.Type)
		}
		return Custom{Object: mi}, nil
	case ir.KindCollection:
		var envs []envelope
		if err := json.Unmarshal(body, &envs); err != nil {
			return nil, fmt.Errorf("decode collection: %w", err)
		}
		objs := make([]Object, 0, len(envs))
		for i, env := range envs {
			o, err := decodeObject(env)
			if err != nil {
				return nil, fmt.Errorf("collection[%d]: %w", i, err)
			}
			objs = append(objs, o)
		}
		return Collection{Objects: objs}, nil
	default:
		return nil, fmt.Errorf("decode: unsupported kind %s", kind)
	}
}

// Codec is the default deserializer: it reads the kind from the payload
// header and decodes the payload accordingly.
type Codec struct{}

// Deserialize decodes ref into a representation.
func (Codec) Deserialize(ref ir.DataRef) (Representation, error) {
	h, err := ref.DataHeader()
	if err != nil {
		return nil, fmt.Errorf("deserialize: %w", err)
	}
	return Decode(h.Kind, ref.Payload)
}

// Frame serializes rep and wraps it in a DataRef for the given producer.
func Frame(origin, description string, subSpec uint32, rep Representation) (ir.DataRef, error) {
	kind, body, err := Encode(rep)
	if err != nil {
		return ir.DataRef{}, err
	}
	return ir.NewDataRef(ir.DataHeader{
		Origin:      origin,
		Description: description,
		SubSpec:     subSpec,
		Kind:        kind,
	}, body)
}
