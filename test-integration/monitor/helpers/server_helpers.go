package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/onsi/gomega"

	monitor "github.com/sapo-cl/mercadopublico-monitor/internal/app"
	"github.com/sapo-cl/mercadopublico-monitor/internal/config"
	"github.com/sapo-cl/mercadopublico-monitor/internal/service"
	"github.com/sapo-cl/mercadopublico-monitor/internal/status"
	"github.com/sapo-cl/mercadopublico-monitor/internal/tender"
)

// ServerTestHelper manages the monitor lifecycle for testing
type ServerTestHelper struct {
	ctx        context.Context
	cancel     context.CancelFunc
	configPath string
	ticket     string
	baseURL    string
	address    string
	httpClient *http.Client
	app        *monitor.MonitorApp
	done       chan error
}

// NewServerTestHelper creates a helper serving on a free local port
func NewServerTestHelper(ctx context.Context, configPath, ticket string) *ServerTestHelper {
	address := freeAddress()
	return &ServerTestHelper{
		ctx:        ctx,
		configPath: configPath,
		ticket:     ticket,
		address:    address,
		baseURL:    "http://" + address,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func freeAddress() string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	defer func() {
		_ = l.Close()
	}()
	return l.Addr().String()
}

// StartServer loads the configuration and starts the monitor in the background
func (s *ServerTestHelper) StartServer() error {
	cfg, err := config.LoadConfig(config.WithConfigPath(s.configPath), config.WithoutTicket())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.SetTicket(s.ticket); err != nil {
		return err
	}

	app, err := monitor.NewMonitorApp(s.ctx,
		monitor.WithConfig(cfg),
		monitor.WithAddress(s.address),
	)
	if err != nil {
		return fmt.Errorf("failed to build app: %w", err)
	}
	s.app = app

	runCtx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel
	s.done = make(chan error, 1)
	go func() {
		s.done <- app.Start(runCtx)
	}()
	return nil
}

// StopServer stops the monitor and waits for Start to return
func (s *ServerTestHelper) StopServer() error {
	if s.app == nil {
		return nil
	}
	err := s.app.Stop(5 * time.Second)
	s.cancel()
	startErr := <-s.done
	if err != nil {
		return err
	}
	return startErr
}

// WaitForServerReady waits for the readiness probe to succeed
func (s *ServerTestHelper) WaitForServerReady(timeout time.Duration) {
	gomega.Eventually(func() error {
		resp, err := s.httpClient.Get(s.baseURL + "/readiness")
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned status %d", resp.StatusCode)
		}
		return nil
	}, timeout, 100*time.Millisecond).Should(gomega.Succeed(), "Server should be ready")
}

// TriggerSync posts to the operator sync endpoint and returns the status code
func (s *ServerTestHelper) TriggerSync() int {
	resp, err := s.httpClient.Post(s.baseURL+"/internal/sync", "application/json", nil)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	defer func() {
		_ = resp.Body.Close()
	}()
	return resp.StatusCode
}

// SyncStatus reads the operator status endpoint
func (s *ServerTestHelper) SyncStatus() status.SyncStatus {
	var st status.SyncStatus
	s.getJSON("/internal/sync/status", http.StatusOK, &st)
	return st
}

// ListTenders reads /api/v1/tenders with the given raw query
func (s *ServerTestHelper) ListTenders(query string) service.TenderPage {
	var result service.TenderPage
	path := "/api/v1/tenders"
	if query != "" {
		path += "?" + query
	}
	s.getJSON(path, http.StatusOK, &result)
	return result
}

// GetTender reads /api/v1/tenders/{code} and returns the status code
func (s *ServerTestHelper) GetTender(code string) (*tender.Tender, int) {
	resp, err := s.httpClient.Get(s.baseURL + "/api/v1/tenders/" + code)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode
	}
	var t tender.Tender
	gomega.Expect(json.NewDecoder(resp.Body).Decode(&t)).To(gomega.Succeed())
	return &t, resp.StatusCode
}

func (s *ServerTestHelper) getJSON(path string, wantStatus int, into any) {
	resp, err := s.httpClient.Get(s.baseURL + path)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	defer func() {
		_ = resp.Body.Close()
	}()
	gomega.Expect(resp.StatusCode).To(gomega.Equal(wantStatus), "GET %s", path)
	gomega.Expect(json.NewDecoder(resp.Body).Decode(into)).To(gomega.Succeed())
}

// WriteConfigYAML writes a memory-store configuration pointing at apiURL
func WriteConfigYAML(dir, apiURL string, runOnStart bool) string {
	content := fmt.Sprintf(`mercadoPublico:
  baseUrl: %s
  timeout: 5s

sync:
  interval: 1h
  cleanupInterval: 24h
  detailDelay: 0s
  timezone: America/Santiago
  statusFile: %s
  runOnStart: %t

storage:
  type: memory
`, apiURL, filepath.Join(dir, "status.json"), runOnStart)

	configPath := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(configPath, []byte(content), 0600)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	return configPath
}
