package v1

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// DataField holds the payload of every response Struct.
const DataField = "data"

// RequestStruct converts a JSON object value (usually a query) into a request Struct.
func RequestStruct(v any) (*structpb.Struct, error) {
	return toStruct(v)
}

// ResponseStruct wraps v under DataField.
func ResponseStruct(v any) (*structpb.Struct, error) {
	return toStruct(map[string]any{DataField: v})
}

// DecodeRequest decodes a request Struct into dest. A nil Struct decodes as an empty object.
func DecodeRequest(in *structpb.Struct, dest any) error {
	return fromStruct(in, dest)
}

// DecodeResponse decodes the DataField of a response Struct into dest.
func DecodeResponse(out *structpb.Struct, dest any) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := fromStruct(out, &envelope); err != nil {
		return err
	}
	if len(envelope.Data) == 0 {
		return fmt.Errorf("response has no %q field", DataField)
	}
	return json.Unmarshal(envelope.Data, dest)
}

func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal struct value: %w", err)
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("convert to struct: %w", err)
	}
	return s, nil
}

func fromStruct(s *structpb.Struct, dest any) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	raw, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("convert from struct: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal struct value: %w", err)
	}
	return nil
}
