package nem12v1

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// RejectionDetail says why a document was rejected. It rides on an
// InvalidArgument status as a google.protobuf.Struct detail.
type RejectionDetail struct {
	Kind string
	Line int
}

// RejectionError builds the status returned by ParseFile for an invalid document.
func RejectionError(msg string, d RejectionDetail) error {
	st := status.New(codes.InvalidArgument, msg)
	detail, err := structpb.NewStruct(map[string]any{
		"kind": d.Kind,
		"line": d.Line,
	})
	if err != nil {
		return st.Err()
	}
	if withDetail, err := st.WithDetails(detail); err == nil {
		st = withDetail
	}
	return st.Err()
}

// RejectionFromError extracts the rejection detail from a status error.
func RejectionFromError(err error) (RejectionDetail, bool) {
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.InvalidArgument {
		return RejectionDetail{}, false
	}
	for _, d := range st.Details() {
		s, ok := d.(*structpb.Struct)
		if !ok {
			continue
		}
		f := s.GetFields()
		kind, err := stringField(f, "kind")
		if err != nil || kind == "" {
			continue
		}
		line, err := numberField(f, "line")
		if err != nil {
			continue
		}
		return RejectionDetail{Kind: kind, Line: int(line)}, true
	}
	return RejectionDetail{}, false
}
