package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"

	"github.com/sapo-cl/mercadopublico-monitor/internal/mercadopublico"
)

// MockAPIServerBuilder provides a fluent interface for building a fake
// Mercado Público API
type MockAPIServerBuilder struct {
	ticket    string
	summaries []mercadopublico.Tender
	details   map[string]mercadopublico.Tender
	listFails bool
}

// NewMockAPIServerBuilder creates a builder that accepts only the given ticket
func NewMockAPIServerBuilder(ticket string) *MockAPIServerBuilder {
	return &MockAPIServerBuilder{
		ticket:  ticket,
		details: make(map[string]mercadopublico.Tender),
	}
}

// WithSummaries sets the records returned by a fecha query
func (b *MockAPIServerBuilder) WithSummaries(summaries ...mercadopublico.Tender) *MockAPIServerBuilder {
	b.summaries = append(b.summaries, summaries...)
	return b
}

// WithDetail sets the record returned by a codigo query
func (b *MockAPIServerBuilder) WithDetail(detail mercadopublico.Tender) *MockAPIServerBuilder {
	b.details[detail.CodigoExterno] = detail
	return b
}

// WithFailingList makes every fecha query answer 500
func (b *MockAPIServerBuilder) WithFailingList() *MockAPIServerBuilder {
	b.listFails = true
	return b
}

// MockAPIServer is a running fake API
type MockAPIServer struct {
	*httptest.Server

	listCalls   atomic.Int32
	mu          sync.Mutex
	detailCalls map[string]int
}

// ListCalls returns how many fecha queries were served
func (s *MockAPIServer) ListCalls() int {
	return int(s.listCalls.Load())
}

// DetailCalls returns how many codigo queries were served for code
func (s *MockAPIServer) DetailCalls(code string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detailCalls[code]
}

// Build starts the fake API
func (b *MockAPIServerBuilder) Build() *MockAPIServer {
	srv := &MockAPIServer{detailCalls: make(map[string]int)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /licitaciones.json", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("ticket") != b.ticket {
			http.Error(w, `{"Codigo":203,"Mensaje":"Ticket no válido."}`, http.StatusUnauthorized)
			return
		}

		if code := query.Get("codigo"); code != "" {
			srv.mu.Lock()
			srv.detailCalls[code]++
			srv.mu.Unlock()

			var listado []mercadopublico.Tender
			if detail, ok := b.details[code]; ok {
				listado = append(listado, detail)
			}
			writeList(w, listado)
			return
		}

		srv.listCalls.Add(1)
		if b.listFails {
			http.Error(w, "upstream unavailable", http.StatusInternalServerError)
			return
		}
		writeList(w, b.summaries)
	})

	srv.Server = httptest.NewServer(mux)
	return srv
}

func writeList(w http.ResponseWriter, listado []mercadopublico.Tender) {
	if listado == nil {
		listado = []mercadopublico.Tender{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(mercadopublico.ListResponse{
		Cantidad: len(listado),
		Version:  "v1",
		Listado:  listado,
	})
}
