package templating_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-templating/pkg/templating"
	"github.com/goliatone/go-templating/pkg/testsupport"
)

func TestPackageExportsRenderPageElement(t *testing.T) {
	renderer := &testsupport.RecordingRenderer{Output: "ok"}
	req := testsupport.NewRequest(t, "/").WithRenderer(renderer)

	exports := map[string]func() (string, error){
		"Render":  func() (string, error) { return templating.Render(req, "t", nil) },
		"Page":    func() (string, error) { return templating.Page(req, "t", nil, nil) },
		"Element": func() (string, error) { return templating.Element(req, "t", nil, nil) },
	}
	for name, fn := range exports {
		out, err := fn()
		if err != nil || out != "ok" {
			t.Fatalf("%s: expected ok, got %q (err=%v)", name, out, err)
		}
	}
	if got := len(renderer.Calls()); got != len(exports) {
		t.Fatalf("expected %d renderer calls, got %d", len(exports), got)
	}
}

func TestTemplating_RenderPassesNameAndArgs(t *testing.T) {
	renderer := &testsupport.RecordingRenderer{Output: "<p>markup</p>"}
	tpl := templating.New(templating.WithRenderer(renderer))
	req := testsupport.NewRequest(t, "/")

	out, err := tpl.Render(req, "who-cares.html", testsupport.EscapingArgs())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "<p>markup</p>" {
		t.Fatalf("expected markup unchanged, got %q", out)
	}

	call := renderer.LastCall(t)
	if call.Name != "who-cares.html" {
		t.Fatalf("expected template name passed through, got %q", call.Name)
	}
	if diff := cmp.Diff([]string{"element", "safe", "unsafe", "url"}, call.Args.Keys()); diff != "" {
		t.Fatalf("args keys mismatch (-want +got):\n%s", diff)
	}
	if call.Args["element"] != nil {
		t.Fatalf("expected nil element for Render, got %#v", call.Args["element"])
	}
}

func TestTemplating_PageAndElementValues(t *testing.T) {
	renderer := &testsupport.RecordingRenderer{}
	tpl := templating.New(templating.WithRenderer(renderer))
	req := testsupport.NewRequest(t, "/")

	if _, err := tpl.Page(req, "page", "the-page", nil); err != nil {
		t.Fatalf("page: %v", err)
	}
	if got := renderer.LastCall(t).Args["element"]; got != "the-page" {
		t.Fatalf("expected page under element, got %#v", got)
	}

	if _, err := tpl.Element(req, "element", "the-element", nil); err != nil {
		t.Fatalf("element: %v", err)
	}
	if got := renderer.LastCall(t).Args["element"]; got != "the-element" {
		t.Fatalf("expected element under element, got %#v", got)
	}
}

func TestTemplating_ExtraArgsWin(t *testing.T) {
	renderer := &testsupport.RecordingRenderer{}
	tpl := templating.New(templating.WithRenderer(renderer))
	req := testsupport.NewRequest(t, "/")

	if _, err := tpl.Page(req, "page", "framework", templating.Args{"element": "caller", "url": "caller-url"}); err != nil {
		t.Fatalf("page: %v", err)
	}
	args := renderer.LastCall(t).Args
	if args["element"] != "caller" || args["url"] != "caller-url" {
		t.Fatalf("expected caller values to win, got %#v", args)
	}
}

func TestTemplating_ProviderExtrasReachRenderer(t *testing.T) {
	renderer := &testsupport.RecordingRenderer{}
	provider := templating.Extend(nil, func(_ *templating.Request, args templating.Args) templating.Args {
		args["app_name"] = "example"
		return args
	})
	tpl := templating.New(templating.WithRenderer(renderer), templating.WithArgsProvider(provider))
	req := testsupport.NewRequest(t, "/")

	if _, err := tpl.Element(req, "element", nil, nil); err != nil {
		t.Fatalf("element: %v", err)
	}
	if got := renderer.LastCall(t).Args["app_name"]; got != "example" {
		t.Fatalf("expected provider value, got %#v", got)
	}
}

func TestTemplating_NoRenderer(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	tpl := templating.New(templating.WithLogger(zap.New(core)))
	req := testsupport.NewRequest(t, "/")

	out, err := tpl.Render(req, "missing", nil)
	if !errors.Is(err, templating.ErrNoRenderer) {
		t.Fatalf("expected ErrNoRenderer, got %v", err)
	}
	if out != "" {
		t.Fatalf("expected no markup, got %q", out)
	}
	if logs.Len() != 1 {
		t.Fatalf("expected one error log, got %d", logs.Len())
	}

	if _, err := templating.Render(req, "missing", nil); !errors.Is(err, templating.ErrNoRenderer) {
		t.Fatalf("package Render: expected ErrNoRenderer, got %v", err)
	}
}

func TestTemplating_RequestSlotWins(t *testing.T) {
	fallback := &testsupport.RecordingRenderer{Output: "fallback"}
	slot := &testsupport.RecordingRenderer{Output: "slot"}
	tpl := templating.New(templating.WithRenderer(fallback))

	out, err := tpl.Render(testsupport.NewRequest(t, "/").WithRenderer(slot), "t", nil)
	if err != nil || out != "slot" {
		t.Fatalf("expected slot renderer, got %q (err=%v)", out, err)
	}

	out, err = tpl.Render(testsupport.NewRequest(t, "/"), "t", nil)
	if err != nil || out != "fallback" {
		t.Fatalf("expected fallback renderer, got %q (err=%v)", out, err)
	}
}

func TestTemplating_RendererErrorPropagatesUnchanged(t *testing.T) {
	engineErr := errors.New("template not found")
	renderer := &testsupport.RecordingRenderer{Err: engineErr}
	tpl := templating.New(templating.WithRenderer(renderer))

	_, err := tpl.Render(testsupport.NewRequest(t, "/"), "t", nil)
	if err != engineErr {
		t.Fatalf("expected engine error unchanged, got %v", err)
	}
}

func TestMiddleware_AttachesRenderer(t *testing.T) {
	renderer := templating.RendererFunc(func(name string, args templating.Args) (string, error) {
		return name + ":" + args["url"].(templating.URL).Abs(), nil
	})

	var out string
	handler := templating.Middleware(renderer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		out, err = templating.Render(templating.NewRequest(r), "index", nil)
		if err != nil {
			t.Errorf("render: %v", err)
		}
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/docs?x=1", nil))
	if out != "index:/docs?x=1" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRendererFromContext_Nil(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := templating.ContextWithRenderer(r.Context(), nil)
	if _, ok := templating.RendererFromContext(ctx); ok {
		t.Fatalf("expected nil renderer to resolve as missing")
	}
	if req := templating.NewRequest(r.WithContext(ctx)); req.Renderer() != nil {
		t.Fatalf("expected empty renderer slot")
	}
}
