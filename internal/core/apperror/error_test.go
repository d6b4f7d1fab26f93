package apperror

import (
	"net/http"
	"testing"
)

func TestIdempotencyErrors(t *testing.T) {
	conflict := NewIdempotencyConflict("key-1")
	if conflict.Code != CodeIdempotency || conflict.HTTPStatus != http.StatusConflict {
		t.Errorf("conflict = %s/%d, want %s/409", conflict.Code, conflict.HTTPStatus, CodeIdempotency)
	}
	if conflict.Details["idempotency_key"] != "key-1" {
		t.Errorf("conflict details = %v, want idempotency_key=key-1", conflict.Details)
	}

	mismatch := NewIdempotencyMismatch("key-2").WithDetail("stored_operation", "orders.confirm")
	if mismatch.Code != CodeIdempotency || mismatch.HTTPStatus != http.StatusConflict {
		t.Errorf("mismatch = %s/%d, want %s/409", mismatch.Code, mismatch.HTTPStatus, CodeIdempotency)
	}
	if mismatch.Details["stored_operation"] != "orders.confirm" {
		t.Errorf("mismatch details = %v, want stored_operation carried", mismatch.Details)
	}
}
