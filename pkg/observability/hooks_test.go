package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnComposeStart(ctx, 12, 6)
	p.OnComposeComplete(ctx, 7, time.Millisecond, nil)
	p.OnRenderStart(ctx, "text")
	p.OnRenderComplete(ctx, "text", 512, time.Millisecond, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "routine")
	c.OnCacheMiss(ctx, "formation")
	c.OnCacheSet(ctx, "routine", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/api/time/{seconds}")
	h.OnResponse(ctx, "GET", "/api/time/{seconds}", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
}

func TestLogHooks(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	NewLogHooks(logger).Register()

	ctx := context.Background()
	Pipeline().OnComposeStart(ctx, 12, 6)
	Pipeline().OnComposeComplete(ctx, 0, time.Millisecond, errors.New("bad team"))
	Cache().OnCacheHit(ctx, "routine")
	HTTP().OnResponse(ctx, "POST", "/api/routines", 201, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"compose start", "team_size=12", "compose failed", "bad team", "cache hit", "status=201"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksRespectLevel(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel}))
	h.OnCacheMiss(context.Background(), "formation")
	if buf.Len() != 0 {
		t.Errorf("debug event logged at info level: %q", buf.String())
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
