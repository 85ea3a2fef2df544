package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	pb "github.com/godilite/competency-dashboard/api/v1"
	"github.com/godilite/competency-dashboard/internal/analytics"
	"github.com/godilite/competency-dashboard/internal/filter"
	"github.com/godilite/competency-dashboard/internal/grpc/mocks"
	"github.com/godilite/competency-dashboard/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func f(v float64) *float64 { return &v }

func sampleChart() analytics.Chart {
	return analytics.Chart{
		DimensionKey: analytics.DimensionUnit,
		Series:       []analytics.Series{{ID: "12", Label: "Communication"}},
		Labels:       []string{"Communication"},
		Records: []analytics.ChartRecord{
			{Dimension: "ICU", Values: map[string]*float64{"Communication": f(8.5)}},
		},
	}
}

func queryStruct(t *testing.T, q service.Query) *structpb.Struct {
	t.Helper()
	req, err := pb.RequestStruct(q)
	require.NoError(t, err)
	return req
}

type chartResponse struct {
	Labels []string         `json:"labels"`
	Rows   []map[string]any `json:"rows"`
}

// TestNewGRPCHandlers tests the constructor
func TestNewGRPCHandlers(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		mockDashboard := &mocks.MockDashboardService{}
		mockCache := &mocks.MockCacher{}
		ttl := 5 * time.Minute

		handlers := NewGRPCHandlers(mockDashboard, mockCache, zap.NewNop(), ttl)

		assert.NotNil(t, handlers)
		assert.Equal(t, mockDashboard, handlers.dashboard)
		assert.Equal(t, mockCache, handlers.cache)
		assert.Equal(t, ttl, handlers.cacheTTL)
		assert.NotNil(t, handlers.logger)
	})

	t.Run("nil dashboard service panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewGRPCHandlers(nil, &mocks.MockCacher{}, zap.NewNop(), time.Minute)
		})
	})

	t.Run("zero TTL uses default", func(t *testing.T) {
		handlers := NewGRPCHandlers(&mocks.MockDashboardService{}, &mocks.MockCacher{}, zap.NewNop(), 0)

		assert.Equal(t, defaultCacheDuration, handlers.cacheTTL)
	})

	t.Run("nil logger and cache are allowed", func(t *testing.T) {
		handlers := NewGRPCHandlers(&mocks.MockDashboardService{}, nil, nil, time.Minute)

		assert.NotNil(t, handlers.logger)
		assert.Nil(t, handlers.store())
	})
}

// TestNormalizeKey tests cache key generation
func TestNormalizeKey(t *testing.T) {
	q := service.Query{Selection: filter.Selection{Units: []string{"ICU", "Ward A"}}, Metric: "percentile"}

	t.Run("prefix and query", func(t *testing.T) {
		key := normalizeKey(cacheKeyHeatmap, q)

		assert.Equal(t, `grpc:heatmap:{"units":["ICU","Ward A"],"metric":"percentile"}`, key)
	})

	t.Run("stable for equal queries", func(t *testing.T) {
		other := service.Query{Selection: filter.Selection{Units: []string{"ICU", "Ward A"}}, Metric: "percentile"}

		assert.Equal(t, normalizeKey(cacheKeyRadar, q), normalizeKey(cacheKeyRadar, other))
	})

	t.Run("unit order is significant", func(t *testing.T) {
		swapped := service.Query{Selection: filter.Selection{Units: []string{"Ward A", "ICU"}}, Metric: "percentile"}

		assert.NotEqual(t, normalizeKey(cacheKeyBarChart, q), normalizeKey(cacheKeyBarChart, swapped))
	})

	t.Run("views do not share keys", func(t *testing.T) {
		assert.NotEqual(t, normalizeKey(cacheKeyRadar, q), normalizeKey(cacheKeySubRadar, q))
	})
}

// TestHandleError tests error handling and status code mapping
func TestHandleError(t *testing.T) {
	handlers := &GRPCHandlers{logger: zap.NewNop()}

	t.Run("context canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := handlers.handleError(ctx, "test_operation", errors.New("some error"))

		assert.Equal(t, codes.Canceled, status.Code(err))
		assert.Contains(t, err.Error(), "request canceled")
	})

	t.Run("context deadline exceeded", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		time.Sleep(time.Millisecond)

		err := handlers.handleError(ctx, "test_operation", errors.New("some error"))

		assert.Equal(t, codes.DeadlineExceeded, status.Code(err))
		assert.Contains(t, err.Error(), "request timed out")
	})

	tests := []struct {
		name     string
		err      error
		code     codes.Code
		contains string
	}{
		{"invalid query", fmt.Errorf("%w: no units or regions selected", service.ErrInvalidQuery), codes.InvalidArgument, "no units or regions selected"},
		{"unknown competency", fmt.Errorf("%w: 99", service.ErrUnknownCompetency), codes.NotFound, "unknown competency"},
		{"storage failure", fmt.Errorf("%w: disk I/O error", service.ErrStorageFailure), codes.Internal, "database error"},
		{"unknown error", errors.New("database connection lost"), codes.Internal, "test_operation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := handlers.handleError(context.Background(), "test_operation", tt.err)

			assert.Equal(t, tt.code, status.Code(err))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestGetBarChart(t *testing.T) {
	t.Run("cache miss fetches and renders rows", func(t *testing.T) {
		var got service.Query
		mockDashboard := &mocks.MockDashboardService{
			GetBarChartFunc: func(ctx context.Context, q service.Query) (analytics.Chart, error) {
				got = q
				return sampleChart(), nil
			},
		}
		handlers := NewGRPCHandlers(mockDashboard, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		out, err := handlers.GetBarChart(context.Background(), queryStruct(t, service.Query{
			Selection: filter.Selection{Units: []string{"ICU"}},
			Sections:  []string{"12"},
		}))

		require.NoError(t, err)
		assert.Equal(t, []string{"ICU"}, got.Units)
		assert.Equal(t, []string{"12"}, got.Sections)

		var resp chartResponse
		require.NoError(t, pb.DecodeResponse(out, &resp))
		assert.Equal(t, []string{"Communication"}, resp.Labels)
		require.Len(t, resp.Rows, 1)
		assert.Equal(t, "ICU", resp.Rows[0]["unit"])
		assert.Equal(t, 8.5, resp.Rows[0]["Communication"])
	})

	t.Run("cache hit", func(t *testing.T) {
		mockCache := &mocks.MockCacher{
			GetFunc: func(ctx context.Context, key string, dest any) error {
				chart := sampleChart()
				chart.Records[0].Dimension = "cached"
				*(dest.(*analytics.Chart)) = chart
				return nil
			},
		}
		handlers := NewGRPCHandlers(&mocks.MockDashboardService{}, mockCache, zap.NewNop(), time.Minute)

		out, err := handlers.GetBarChart(context.Background(), queryStruct(t, service.Query{
			Selection: filter.Selection{Units: []string{"ICU"}},
		}))

		require.NoError(t, err)
		var resp chartResponse
		require.NoError(t, pb.DecodeResponse(out, &resp))
		assert.Equal(t, "cached", resp.Rows[0]["unit"])
	})

	t.Run("malformed query", func(t *testing.T) {
		handlers := NewGRPCHandlers(&mocks.MockDashboardService{}, &mocks.MockCacher{}, zap.NewNop(), time.Minute)
		req, err := structpb.NewStruct(map[string]any{"units": "ICU"})
		require.NoError(t, err)

		_, err = handlers.GetBarChart(context.Background(), req)

		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("service error", func(t *testing.T) {
		mockDashboard := &mocks.MockDashboardService{
			GetBarChartFunc: func(ctx context.Context, q service.Query) (analytics.Chart, error) {
				return analytics.Chart{}, fmt.Errorf("%w: no units or regions selected", service.ErrInvalidQuery)
			},
		}
		handlers := NewGRPCHandlers(mockDashboard, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		resp, err := handlers.GetBarChart(context.Background(), &structpb.Struct{})

		assert.Nil(t, resp)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})
}

func TestGetHeatmap_UnknownCompetency(t *testing.T) {
	mockDashboard := &mocks.MockDashboardService{
		GetHeatmapFunc: func(ctx context.Context, q service.Query) (analytics.Heatmap, error) {
			assert.Equal(t, "99", q.Section)
			return analytics.Heatmap{}, fmt.Errorf("%w: 99", service.ErrUnknownCompetency)
		},
	}
	handlers := NewGRPCHandlers(mockDashboard, nil, zap.NewNop(), time.Minute)

	_, err := handlers.GetHeatmap(context.Background(), queryStruct(t, service.Query{
		Selection: filter.Selection{Units: []string{"ICU"}},
		Section:   "99",
	}))

	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestGetRadarChart_RendersInsights(t *testing.T) {
	mockDashboard := &mocks.MockDashboardService{
		GetRadarChartFunc: func(ctx context.Context, q service.Query) (service.RadarView, error) {
			return service.RadarView{
				Chart: sampleChart(),
				Insights: analytics.RadarInsights{
					TopUnits: []analytics.Ranked{{Name: "ICU", Value: 8.5}},
				},
			}, nil
		},
	}
	handlers := NewGRPCHandlers(mockDashboard, nil, zap.NewNop(), time.Minute)

	out, err := handlers.GetRadarChart(context.Background(), queryStruct(t, service.Query{
		Selection: filter.Selection{Units: []string{"ICU"}},
	}))

	require.NoError(t, err)
	var resp struct {
		Chart    chartResponse           `json:"chart"`
		Insights analytics.RadarInsights `json:"insights"`
	}
	require.NoError(t, pb.DecodeResponse(out, &resp))
	assert.Len(t, resp.Chart.Rows, 1)
	assert.Equal(t, "ICU", resp.Insights.TopUnits[0].Name)
}

func TestGetRegions(t *testing.T) {
	mockDashboard := &mocks.MockDashboardService{
		GetRegionsFunc: func(ctx context.Context) (*filter.RegionMap, error) {
			m := filter.NewRegionMap()
			m.Add("North", "ICU", "Ward A")
			m.Add("South", "Maternity")
			return m, nil
		},
	}
	handlers := NewGRPCHandlers(mockDashboard, nil, zap.NewNop(), time.Minute)

	out, err := handlers.GetRegions(context.Background(), nil)

	require.NoError(t, err)
	regions := filter.NewRegionMap()
	require.NoError(t, pb.DecodeResponse(out, regions))
	assert.Equal(t, []string{"North", "South"}, regions.Regions())
	assert.Equal(t, []string{"ICU", "Ward A"}, regions.Units("North"))
}

func TestInvalidateCatalog(t *testing.T) {
	t.Run("drops cached views", func(t *testing.T) {
		var dropped string
		mockCache := &mocks.MockCacher{
			DeletePrefixFunc: func(ctx context.Context, prefix string) error {
				dropped = prefix
				return nil
			},
		}
		mockDashboard := &mocks.MockDashboardService{
			InvalidateCatalogFunc: func(ctx context.Context) error { return nil },
		}
		handlers := NewGRPCHandlers(mockDashboard, mockCache, zap.NewNop(), time.Minute)

		_, err := handlers.InvalidateCatalog(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, CacheKeyPrefix, dropped)
	})

	t.Run("service failure", func(t *testing.T) {
		mockDashboard := &mocks.MockDashboardService{
			InvalidateCatalogFunc: func(ctx context.Context) error {
				return fmt.Errorf("%w: redis down", service.ErrStorageFailure)
			},
		}
		handlers := NewGRPCHandlers(mockDashboard, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		_, err := handlers.InvalidateCatalog(context.Background(), nil)

		assert.Equal(t, codes.Internal, status.Code(err))
	})
}

func TestTransform(t *testing.T) {
	const payload = `{"status":"success","data":{"section_detail":{},"unit_details":{}}}`

	capture := func(view *string, body *[]byte, q *service.Query) *mocks.MockDashboardService {
		return &mocks.MockDashboardService{
			TransformFunc: func(ctx context.Context, v string, p []byte, query service.Query) (any, error) {
				*view, *body, *q = v, p, query
				return sampleChart(), nil
			},
		}
	}

	t.Run("payload as string", func(t *testing.T) {
		var view string
		var body []byte
		var q service.Query
		handlers := NewGRPCHandlers(capture(&view, &body, &q), nil, zap.NewNop(), time.Minute)
		req, err := structpb.NewStruct(map[string]any{
			"view":    "bar",
			"payload": payload,
			"units":   []any{"ICU"},
		})
		require.NoError(t, err)

		_, err = handlers.Transform(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, "bar", view)
		assert.Equal(t, payload, string(body))
		assert.Equal(t, []string{"ICU"}, q.Units)
	})

	t.Run("payload as object", func(t *testing.T) {
		var view string
		var body []byte
		var q service.Query
		handlers := NewGRPCHandlers(capture(&view, &body, &q), nil, zap.NewNop(), time.Minute)
		var obj map[string]any
		require.NoError(t, json.Unmarshal([]byte(payload), &obj))
		req, err := structpb.NewStruct(map[string]any{"view": "heatmap", "payload": obj})
		require.NoError(t, err)

		_, err = handlers.Transform(context.Background(), req)

		require.NoError(t, err)
		assert.JSONEq(t, payload, string(body))
	})

	t.Run("view is required", func(t *testing.T) {
		handlers := NewGRPCHandlers(&mocks.MockDashboardService{}, nil, zap.NewNop(), time.Minute)

		_, err := handlers.Transform(context.Background(), &structpb.Struct{})

		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})
}

// TestServiceDesc exercises the handlers through a real gRPC server over an in-memory listener.
func TestServiceDesc(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	mockDashboard := &mocks.MockDashboardService{
		GetSubCompetencyChartFunc: func(ctx context.Context, q service.Query) (analytics.Chart, error) {
			return sampleChart(), nil
		},
	}
	pb.RegisterDashboardServiceServer(srv, NewGRPCHandlers(mockDashboard, nil, zap.NewNop(), time.Minute))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	client := pb.NewDashboardServiceClient(conn)

	out, err := client.Call(context.Background(), pb.MethodGetSubCompetencyChart, queryStruct(t, service.Query{
		Selection: filter.Selection{Units: []string{"ICU"}},
	}))
	require.NoError(t, err)
	var resp chartResponse
	require.NoError(t, pb.DecodeResponse(out, &resp))
	assert.Equal(t, []string{"Communication"}, resp.Labels)

	_, err = client.Call(context.Background(), pb.MethodGetBubbleMatrix, nil)
	assert.Equal(t, codes.Internal, status.Code(err))
}
