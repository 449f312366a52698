package httpclient_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sapo-cl/mercadopublico-monitor/internal/httpclient"
)

func TestHTTPError(t *testing.T) {
	t.Parallel()

	err := httpclient.NewHTTPError(503, "https://api.example.cl/licitaciones.json?ticket=REDACTED", "503 Service Unavailable")

	assert.Equal(t,
		"HTTP 503 for URL https://api.example.cl/licitaciones.json?ticket=REDACTED: 503 Service Unavailable",
		err.Error())
	assert.Equal(t, 503, err.StatusCode)
}
