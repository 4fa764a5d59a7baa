package dbrx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
)

func TestRInteropModeValid(t *testing.T) {
	tests := []struct {
		mode RInteropMode
		want bool
	}{
		{RInteropCheck, true},
		{RInteropOn, true},
		{RInteropOff, true},
		{RInteropMode("maybe"), false},
		{RInteropMode(""), false},
	}

	for _, tt := range tests {
		if got := tt.mode.valid(); got != tt.want {
			t.Errorf("valid(%q) = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestRunRNoContext(t *testing.T) {
	cluster := newTestCluster(t, http.NewServeMux())

	_, err := cluster.RunR(context.Background(), "1 + 1")
	if !errors.Is(err, ErrContextNotSet) {
		t.Fatalf("RunR() error = %v, want ErrContextNotSet", err)
	}
}

func TestRunRDisabled(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/contexts/create", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"ctx-1"}`)
	})

	cluster := newTestCluster(t, mux)

	if _, err := cluster.CreateContext(context.Background(), "no-r"); err != nil {
		t.Fatalf("CreateContext() error = %v", err)
	}

	_, err := cluster.RunR(context.Background(), "1 + 1")
	if !errors.Is(err, ErrRInteropDisabled) {
		t.Fatalf("RunR() error = %v, want ErrRInteropDisabled", err)
	}
}

func TestRunR(t *testing.T) {
	var mu sync.Mutex
	var gotCommand string
	mux := http.NewServeMux()
	mux.HandleFunc("/contexts/create", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"ctx-1"}`)
	})
	mux.HandleFunc("/commands/execute", func(w http.ResponseWriter, r *http.Request) {
		var req commandExecuteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode execute body: %v", err)
		}
		mu.Lock()
		gotCommand = req.Command
		mu.Unlock()
		fmt.Fprint(w, `{"id":"cmd-1"}`)
	})
	mux.HandleFunc("/commands/status", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"cmd-1","status":"Finished","results":{"resultType":"text","data":"[1] 6"}}`)
	})

	cluster := newTestCluster(t, mux, WithRInterop(RInteropOn))

	if _, err := cluster.CreateContext(context.Background(), "r-session"); err != nil {
		t.Fatalf("CreateContext() error = %v", err)
	}

	info, err := cluster.RunR(context.Background(), "sum(c(1, 2, 3))")
	if err != nil {
		t.Fatalf("RunR() error = %v", err)
	}
	if info.Text() != "[1] 6" {
		t.Errorf("Text() = %v, want [1] 6", info.Text())
	}

	mu.Lock()
	defer mu.Unlock()
	if !strings.Contains(gotCommand, "import rpy2.robjects as robjects") {
		t.Errorf("R command does not use the rpy2 bridge:\n%s", gotCommand)
	}
	if !strings.Contains(gotCommand, "robjects.r('''sum(c(1, 2, 3))''')") {
		t.Errorf("R command does not wrap the source:\n%s", gotCommand)
	}
}

func TestRunRTripleQuote(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/contexts/create", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"ctx-1"}`)
	})

	cluster := newTestCluster(t, mux, WithRInterop(RInteropOn))

	if _, err := cluster.CreateContext(context.Background(), "r-session"); err != nil {
		t.Fatalf("CreateContext() error = %v", err)
	}

	_, err := cluster.RunR(context.Background(), "cat('''oops''')")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("RunR() error = %v, want ErrInvalidArgument", err)
	}
}

func TestAttachContextProbesRpy2(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/contexts/status", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"ctx-9","status":"Running"}`)
	})
	mux.HandleFunc("/commands/execute", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"cmd-1"}`)
	})
	mux.HandleFunc("/commands/status", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"cmd-1","status":"Finished","results":{"resultType":"text","data":"Success"}}`)
	})

	cluster := newTestCluster(t, mux, WithRInterop(RInteropCheck))

	ec, err := cluster.AttachContext(context.Background(), "ctx-9")
	if err != nil {
		t.Fatalf("AttachContext() error = %v", err)
	}
	if !ec.RAvailable() {
		t.Error("RAvailable() = false after successful probe, want true")
	}
}

func TestREvalSnippet(t *testing.T) {
	got := rEvalSnippet("x <- 1\nx + 1")
	want := "import rpy2.robjects as robjects\nres = robjects.r('''x <- 1\nx + 1''')\nres.r_repr()"
	if got != want {
		t.Errorf("rEvalSnippet() = %q, want %q", got, want)
	}
}

func TestValidateRSource(t *testing.T) {
	if err := validateRSource("sum(c(1, 2))"); err != nil {
		t.Errorf("validateRSource() error = %v, want nil", err)
	}
	if err := validateRSource("cat('''x''')"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("validateRSource() error = %v, want ErrInvalidArgument", err)
	}
}
