//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "order-desk-api"
	ConsumerName = "order-portal"

	StateNoOrders     = "no orders exist"
	StateActiveOrder  = "an active order exists for pact@example.com"
	StateMissingOrder = "no order with id 404 exists"
)

const (
	CustomerEmail  = "pact@example.com"
	UnknownEmail   = "ghost@example.com"
	SeededOrderID  = "1"
	MissingOrderID = "404"
)

const (
	exampleName    = "Pact Customer"
	exampleAddress = "1 Contract Road"
	exampleItem    = "Margherita"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the order portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExamplePlaceOrderPayload provides stable test data for place-order interactions.
func ExamplePlaceOrderPayload() map[string]any {
	return map[string]any{
		"name":            exampleName,
		"email":           CustomerEmail,
		"deliveryAddress": exampleAddress,
		"items":           []string{exampleItem},
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
