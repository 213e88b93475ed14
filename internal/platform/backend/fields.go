package backend

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// ErrFieldType is returned by Fields.Build when a value cannot be stored in
// the field it is assigned to.
var ErrFieldType = errors.New("field value does not match field type")

// Fields is an ordered set of named field values with explicit presence.
// A name that was never set is absent from the built message, which is how
// optional filters and partial updates avoid sending empty values.
//
// Supported values: string, bool, int, int32, int64, float32, float64,
// time.Time, *Fields (nested message) and []*Fields (repeated message).
type Fields struct {
	entries []fieldEntry
}

type fieldEntry struct {
	name  string
	value any
}

// NewFields returns an empty field set.
func NewFields() *Fields {
	return &Fields{}
}

// Set records name = value, replacing any earlier value for name.
func (f *Fields) Set(name string, value any) *Fields {
	for i := range f.entries {
		if f.entries[i].name == name {
			f.entries[i].value = value
			return f
		}
	}
	f.entries = append(f.entries, fieldEntry{name: name, value: value})
	return f
}

// SetNonEmpty records value only when it is not the empty string.
func (f *Fields) SetNonEmpty(name, value string) *Fields {
	if value == "" {
		return f
	}
	return f.Set(name, value)
}

// SetOptional records *value only when value is non-nil.
func SetOptional[T any](f *Fields, name string, value *T) *Fields {
	if value == nil {
		return f
	}
	return f.Set(name, *value)
}

// Has reports whether name was set.
func (f *Fields) Has(name string) bool {
	if f == nil {
		return false
	}
	for _, e := range f.entries {
		if e.name == name {
			return true
		}
	}
	return false
}

// Get returns the value recorded for name.
func (f *Fields) Get(name string) (any, bool) {
	if f == nil {
		return nil, false
	}
	for _, e := range f.entries {
		if e.name == name {
			return e.value, true
		}
	}
	return nil, false
}

// Names returns the set names in insertion order.
func (f *Fields) Names() []string {
	if f == nil {
		return nil
	}
	names := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		names = append(names, e.name)
	}
	return names
}

// Len returns the number of set names.
func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.entries)
}

// Build creates a message of type md holding exactly the recorded fields.
// Names md does not declare are skipped. A nil receiver builds an empty message.
func (f *Fields) Build(md protoreflect.MessageDescriptor) (*dynamicpb.Message, error) {
	msg := dynamicpb.NewMessage(md)
	if f == nil {
		return msg, nil
	}

	for _, e := range f.entries {
		fd := md.Fields().ByName(protoreflect.Name(e.name))
		if fd == nil {
			slog.Debug("dropping field not declared by backend message",
				slog.String("message", string(md.FullName())),
				slog.String("field", e.name))
			continue
		}
		if err := setField(msg, fd, e.value); err != nil {
			return nil, err
		}
	}

	return msg, nil
}

func setField(msg *dynamicpb.Message, fd protoreflect.FieldDescriptor, value any) error {
	if fd.IsMap() {
		return fieldTypeError(fd, value)
	}

	if fd.IsList() {
		list := msg.Mutable(fd).List()
		switch vs := value.(type) {
		case []*Fields:
			if fd.Message() == nil {
				return fieldTypeError(fd, value)
			}
			for _, child := range vs {
				built, err := child.Build(fd.Message())
				if err != nil {
					return err
				}
				list.Append(protoreflect.ValueOfMessage(built))
			}
		case []string:
			for _, s := range vs {
				v, err := scalarValue(fd, s)
				if err != nil {
					return err
				}
				list.Append(v)
			}
		default:
			return fieldTypeError(fd, value)
		}
		return nil
	}

	if fd.Message() != nil {
		v, err := messageValue(fd, value)
		if err != nil {
			return err
		}
		msg.Set(fd, v)
		return nil
	}

	v, err := scalarValue(fd, value)
	if err != nil {
		return err
	}
	msg.Set(fd, v)
	return nil
}

func messageValue(fd protoreflect.FieldDescriptor, value any) (protoreflect.Value, error) {
	if fd.Message().FullName() == "google.protobuf.Timestamp" {
		switch t := value.(type) {
		case time.Time:
			return protoreflect.ValueOfMessage(timestamppb.New(t).ProtoReflect()), nil
		case *time.Time:
			if t != nil {
				return protoreflect.ValueOfMessage(timestamppb.New(*t).ProtoReflect()), nil
			}
		}
		return protoreflect.Value{}, fieldTypeError(fd, value)
	}

	child, ok := value.(*Fields)
	if !ok {
		return protoreflect.Value{}, fieldTypeError(fd, value)
	}
	built, err := child.Build(fd.Message())
	if err != nil {
		return protoreflect.Value{}, err
	}
	return protoreflect.ValueOfMessage(built), nil
}

func scalarValue(fd protoreflect.FieldDescriptor, value any) (protoreflect.Value, error) {
	switch fd.Kind() {
	case protoreflect.StringKind:
		if s, ok := value.(string); ok {
			return protoreflect.ValueOfString(s), nil
		}
	case protoreflect.BoolKind:
		if b, ok := value.(bool); ok {
			return protoreflect.ValueOfBool(b), nil
		}
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		switch n := value.(type) {
		case int32:
			return protoreflect.ValueOfInt32(n), nil
		case int:
			if n >= math.MinInt32 && n <= math.MaxInt32 {
				return protoreflect.ValueOfInt32(int32(n)), nil
			}
		}
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		switch n := value.(type) {
		case int64:
			return protoreflect.ValueOfInt64(n), nil
		case int32:
			return protoreflect.ValueOfInt64(int64(n)), nil
		case int:
			return protoreflect.ValueOfInt64(int64(n)), nil
		}
	case protoreflect.DoubleKind:
		switch n := value.(type) {
		case float64:
			return protoreflect.ValueOfFloat64(n), nil
		case float32:
			return protoreflect.ValueOfFloat64(float64(n)), nil
		}
	case protoreflect.FloatKind:
		switch n := value.(type) {
		case float32:
			return protoreflect.ValueOfFloat32(n), nil
		case float64:
			return protoreflect.ValueOfFloat32(float32(n)), nil
		}
	}
	return protoreflect.Value{}, fieldTypeError(fd, value)
}

func fieldTypeError(fd protoreflect.FieldDescriptor, value any) error {
	return fmt.Errorf("%w: %s (%s) cannot hold %T", ErrFieldType, fd.FullName(), fd.Kind(), value)
}
