package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		status int
		want   Kind
	}{
		{http.StatusBadRequest, KindValidation},
		{http.StatusNotFound, KindNotFound},
		{http.StatusServiceUnavailable, KindServiceUnavailable},
		{http.StatusInternalServerError, KindServerError},
		{http.StatusBadGateway, KindServerError},
		{http.StatusTeapot, KindUnknown},
	}
	for _, tc := range cases {
		if got := classifyStatus(tc.status); got != tc.want {
			t.Fatalf("status %d: expected %s, got %s", tc.status, tc.want, got)
		}
	}
}

func TestClassifyTransportDeadline(t *testing.T) {
	err := classifyTransport(fmt.Errorf("request: %w", context.DeadlineExceeded))
	if err.Kind != KindTimeout {
		t.Fatalf("expected timeout, got %s", err.Kind)
	}
	if !err.Transient() {
		t.Fatalf("timeout should be transient")
	}
}

func TestClassifyTransportDefaultsToNetwork(t *testing.T) {
	err := classifyTransport(errors.New("connection refused"))
	if err.Kind != KindNetwork {
		t.Fatalf("expected network, got %s", err.Kind)
	}
}

func TestTransientKinds(t *testing.T) {
	transient := []Kind{KindNetwork, KindTimeout, KindServiceUnavailable}
	for _, kind := range transient {
		if !IsTransient(&Error{Kind: kind}) {
			t.Fatalf("expected %s to be transient", kind)
		}
	}
	terminal := []Kind{KindValidation, KindNotFound, KindServerError, KindUnknown}
	for _, kind := range terminal {
		if IsTransient(&Error{Kind: kind}) {
			t.Fatalf("expected %s to be terminal", kind)
		}
	}
	if IsTransient(errors.New("plain")) {
		t.Fatalf("plain errors are not transient")
	}
}

func TestErrorMessagePrecedence(t *testing.T) {
	err := &Error{Kind: KindValidation, Status: 400, Message: "target feature not found in dataset"}
	if err.Error() != "target feature not found in dataset" {
		t.Fatalf("expected verbatim message, got %q", err.Error())
	}
	bare := &Error{Kind: KindServerError, Status: 500}
	if bare.Error() != "server_error (status 500)" {
		t.Fatalf("unexpected fallback message %q", bare.Error())
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("list features: %w", &Error{Kind: KindNotFound})
	if KindOf(wrapped) != KindNotFound {
		t.Fatalf("expected not_found through wrapping")
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Fatalf("expected unknown for plain errors")
	}
}
