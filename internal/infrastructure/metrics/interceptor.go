package metrics

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// serverFault reports whether code blames the server, the gRPC
// counterpart of a 5XX response. Client mistakes such as asking for an
// unknown health service are not counted as errors.
func serverFault(code codes.Code) bool {
	switch code {
	case codes.Unknown, codes.DeadlineExceeded, codes.Unimplemented,
		codes.Internal, codes.Unavailable, codes.DataLoss:
		return true
	}
	return false
}

// UnaryServerInterceptor returns a gRPC interceptor that records request
// counts, durations and server side failures per full method name.
func UnaryServerInterceptor(collector *Collector, exporter *PrometheusExporter) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		start := time.Now()
		method := info.FullMethod

		resp, err := handler(ctx, req)

		duration := time.Since(start).Seconds()
		failed := err != nil && serverFault(status.Code(err))

		collector.RecordRequest(method)
		collector.RecordDuration(method, duration)
		if failed {
			collector.RecordError(method)
		}
		if exporter != nil {
			exporter.RecordRequest(method)
			exporter.RecordDuration(method, duration)
			if failed {
				exporter.RecordError(method)
			}
		}

		return resp, err
	}
}
