package mastertable

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestFetch_KeepsActiveRowsAndHidesStatus(t *testing.T) {
	csvBody := "Name,Category,Status\n" +
		"Milk,Dairy,Active\n" +
		"Bread,Bakery,Retired\n" +
		"Eggs,Dairy, Active \n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(csvBody))
	}))
	defer srv.Close()

	svc := New(srv.URL, newNoopLogger())

	columns, rows, err := svc.Fetch(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, []string{"Name", "Category"}, columns)
	assert.Equal(t, [][]string{
		{"Milk", "Dairy"},
		{"Eggs", "Dairy"},
	}, rows)
}

func TestFetch_NoStatusColumnKeepsEverything(t *testing.T) {
	csvBody := "Name,Category\nMilk,Dairy\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(csvBody))
	}))
	defer srv.Close()

	svc := New(srv.URL, newNoopLogger())

	columns, rows, err := svc.Fetch(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, []string{"Name", "Category"}, columns)
	assert.Equal(t, [][]string{{"Milk", "Dairy"}}, rows)
}

func TestFetch_Non200Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	svc := New(srv.URL, newNoopLogger())

	_, _, err := svc.Fetch(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 403")
}
