package backend

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

var replyMarshaler = protojson.MarshalOptions{
	UseProtoNames:   true,
	EmitUnpopulated: true,
}

// Decode copies a reply message into out, a pointer to a struct whose json
// tags use the proto field names. Timestamps decode into time.Time values and
// unset message fields into nil pointers.
func Decode(msg proto.Message, out any) error {
	data, err := replyMarshaler.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode reply: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	return nil
}
