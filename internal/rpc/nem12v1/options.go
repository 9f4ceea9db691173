package nem12v1

import "google.golang.org/grpc"

// MaxMessageBytes bounds messages in both directions. A ParseFile response is
// several times the size of the uploaded document, so this sits well above the
// gateway's upload limit.
const MaxMessageBytes = 64 << 20

// ServerOptions raises the server's default 4 MiB receive limit.
func ServerOptions() []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.MaxRecvMsgSize(MaxMessageBytes),
		grpc.MaxSendMsgSize(MaxMessageBytes),
	}
}

// DialOptions raises the client's default 4 MiB receive limit.
func DialOptions() []grpc.DialOption {
	return []grpc.DialOption{
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(MaxMessageBytes),
			grpc.MaxCallSendMsgSize(MaxMessageBytes),
		),
	}
}
