package backend

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"

	// Registers google/protobuf/timestamp.proto so schemas can import it.
	_ "google.golang.org/protobuf/types/known/timestamppb"
)

const timestampFile = "google/protobuf/timestamp.proto"

// TimestampType is the fully qualified name of google.protobuf.Timestamp.
const TimestampType = ".google.protobuf.Timestamp"

// FieldSpec describes a single message field.
type FieldSpec struct {
	Name     string
	Number   int32
	Type     descriptorpb.FieldDescriptorProto_Type
	TypeName string
	Repeated bool
	Optional bool
}

// OptionalField marks the field as proto3 optional (presence tracked).
func (f FieldSpec) OptionalField() FieldSpec {
	f.Optional = true
	return f
}

// RepeatedField marks the field as repeated.
func (f FieldSpec) RepeatedField() FieldSpec {
	f.Repeated = true
	return f
}

// String declares a string field.
func String(name string, number int32) FieldSpec {
	return FieldSpec{Name: name, Number: number, Type: descriptorpb.FieldDescriptorProto_TYPE_STRING}
}

// Int32 declares an int32 field.
func Int32(name string, number int32) FieldSpec {
	return FieldSpec{Name: name, Number: number, Type: descriptorpb.FieldDescriptorProto_TYPE_INT32}
}

// Bool declares a bool field.
func Bool(name string, number int32) FieldSpec {
	return FieldSpec{Name: name, Number: number, Type: descriptorpb.FieldDescriptorProto_TYPE_BOOL}
}

// Double declares a double field.
func Double(name string, number int32) FieldSpec {
	return FieldSpec{Name: name, Number: number, Type: descriptorpb.FieldDescriptorProto_TYPE_DOUBLE}
}

// Message declares a field holding another message of the same package.
// typeName is the bare message name, or a fully qualified name starting with a dot.
func Message(name string, number int32, typeName string) FieldSpec {
	return FieldSpec{Name: name, Number: number, Type: descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, TypeName: typeName}
}

// Timestamp declares a google.protobuf.Timestamp field.
func Timestamp(name string, number int32) FieldSpec {
	return Message(name, number, TimestampType)
}

// MessageSpec describes a message type.
type MessageSpec struct {
	Name   string
	Fields []FieldSpec
}

// MethodSpec describes a unary RPC.
type MethodSpec struct {
	Name   string
	Input  string
	Output string
}

// FileSpec describes a proto3 file holding one service and its messages.
type FileSpec struct {
	Path     string
	Package  string
	Service  string
	Methods  []MethodSpec
	Messages []MessageSpec
}

// Schema is a resolved service contract used to build requests and replies.
type Schema struct {
	file    protoreflect.FileDescriptor
	service protoreflect.ServiceDescriptor
}

// NewSchema resolves spec into protobuf descriptors.
func NewSchema(spec FileSpec) (*Schema, error) {
	fdp := spec.descriptor()
	file, err := protodesc.NewFile(fdp, protoregistry.GlobalFiles)
	if err != nil {
		return nil, fmt.Errorf("build schema %s: %w", spec.Path, err)
	}
	svc := file.Services().ByName(protoreflect.Name(spec.Service))
	if svc == nil {
		return nil, fmt.Errorf("build schema %s: service %s not declared", spec.Path, spec.Service)
	}
	return &Schema{file: file, service: svc}, nil
}

// MustSchema is like NewSchema but panics on error. It is intended for
// package-level schema variables.
func MustSchema(spec FileSpec) *Schema {
	s, err := NewSchema(spec)
	if err != nil {
		panic(err)
	}
	return s
}

// ServiceName returns the fully qualified service name, e.g. clients.ClientService.
func (s *Schema) ServiceName() string {
	return string(s.service.FullName())
}

// Service returns the service descriptor.
func (s *Schema) Service() protoreflect.ServiceDescriptor {
	return s.service
}

// File returns the file descriptor.
func (s *Schema) File() protoreflect.FileDescriptor {
	return s.file
}

// Message returns the named message descriptor, or nil when it is not declared.
func (s *Schema) Message(name string) protoreflect.MessageDescriptor {
	return s.file.Messages().ByName(protoreflect.Name(name))
}

// Method returns the named RPC. It panics when the method is not declared,
// since method names are compile-time constants of the adapters.
func (s *Schema) Method(name string) Method {
	md := s.service.Methods().ByName(protoreflect.Name(name))
	if md == nil {
		panic(fmt.Sprintf("backend: method %s not declared on %s", name, s.service.FullName()))
	}
	return Method{desc: md}
}

// Method is a single unary RPC of a schema.
type Method struct {
	desc protoreflect.MethodDescriptor
}

// Name returns the short method name, e.g. GetClientById.
func (m Method) Name() string {
	return string(m.desc.Name())
}

// FullName returns the gRPC method path, e.g. /clients.ClientService/GetClientById.
func (m Method) FullName() string {
	return "/" + string(m.desc.Parent().FullName()) + "/" + string(m.desc.Name())
}

// Input returns the request message descriptor.
func (m Method) Input() protoreflect.MessageDescriptor {
	return m.desc.Input()
}

// Output returns the reply message descriptor.
func (m Method) Output() protoreflect.MessageDescriptor {
	return m.desc.Output()
}

func (spec FileSpec) qualify(typeName string) string {
	if len(typeName) > 0 && typeName[0] == '.' {
		return typeName
	}
	return "." + spec.Package + "." + typeName
}

func (spec FileSpec) descriptor() *descriptorpb.FileDescriptorProto {
	fdp := &descriptorpb.FileDescriptorProto{
		Name:    ptr(spec.Path),
		Package: ptr(spec.Package),
		Syntax:  ptr("proto3"),
	}

	usesTimestamp := false
	for _, msg := range spec.Messages {
		dp := &descriptorpb.DescriptorProto{Name: ptr(msg.Name)}
		for _, f := range msg.Fields {
			label := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
			if f.Repeated {
				label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED
			}
			fp := &descriptorpb.FieldDescriptorProto{
				Name:   ptr(f.Name),
				Number: ptr(f.Number),
				Label:  label.Enum(),
				Type:   f.Type.Enum(),
			}
			if f.Type == descriptorpb.FieldDescriptorProto_TYPE_MESSAGE {
				fp.TypeName = ptr(spec.qualify(f.TypeName))
				if fp.GetTypeName() == TimestampType {
					usesTimestamp = true
				}
			}
			if f.Optional && !f.Repeated {
				// proto3 optional fields live in a synthetic oneof named after the field.
				fp.Proto3Optional = ptr(true)
				fp.OneofIndex = ptr(int32(len(dp.OneofDecl)))
				dp.OneofDecl = append(dp.OneofDecl, &descriptorpb.OneofDescriptorProto{Name: ptr("_" + f.Name)})
			}
			dp.Field = append(dp.Field, fp)
		}
		fdp.MessageType = append(fdp.MessageType, dp)
	}
	if usesTimestamp {
		fdp.Dependency = []string{timestampFile}
	}

	svc := &descriptorpb.ServiceDescriptorProto{Name: ptr(spec.Service)}
	for _, m := range spec.Methods {
		svc.Method = append(svc.Method, &descriptorpb.MethodDescriptorProto{
			Name:       ptr(m.Name),
			InputType:  ptr(spec.qualify(m.Input)),
			OutputType: ptr(spec.qualify(m.Output)),
		})
	}
	fdp.Service = []*descriptorpb.ServiceDescriptorProto{svc}

	return fdp
}

func ptr[T any](v T) *T {
	return &v
}
