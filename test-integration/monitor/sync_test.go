package integration

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sapo-cl/mercadopublico-monitor/internal/status"
	"github.com/sapo-cl/mercadopublico-monitor/internal/tender"
	"github.com/sapo-cl/mercadopublico-monitor/test-integration/monitor/helpers"
)

const testTicket = "integration-ticket"

var _ = Describe("Tender Sync Integration", Label("sync"), func() {
	var (
		tempDir      string
		mockAPI      *helpers.MockAPIServer
		serverHelper *helpers.ServerTestHelper
	)

	BeforeEach(func() {
		tempDir = createTempDir("monitor-test-")
	})

	AfterEach(func() {
		if serverHelper != nil {
			Expect(serverHelper.StopServer()).To(Succeed())
			serverHelper = nil
		}
		if mockAPI != nil {
			mockAPI.Close()
			mockAPI = nil
		}
		cleanupTempDir(tempDir)
	})

	startServer := func(runOnStart bool) {
		configFile := helpers.WriteConfigYAML(tempDir, mockAPI.URL, runOnStart)
		serverHelper = helpers.NewServerTestHelper(ctx, configFile, testTicket)
		Expect(serverHelper.StartServer()).To(Succeed())
		serverHelper.WaitForServerReady(10 * time.Second)
	}

	Context("with a mix of open, closed and expired tenders", func() {
		var open, awarded, expired = helpers.RemoteTender("1000-1-LE25", tender.StatusPublished, 48*time.Hour),
			helpers.RemoteTender("1000-2-LE25", 6, 48*time.Hour),
			helpers.RemoteTender("1000-3-LE25", tender.StatusPublished, -time.Hour)

		BeforeEach(func() {
			mockAPI = helpers.NewMockAPIServerBuilder(testTicket).
				WithSummaries(open, awarded, expired).
				WithDetail(helpers.RemoteDetail(open, "Región Metropolitana de Santiago", 2)).
				Build()
		})

		It("stores and enriches only the eligible tenders after a manual trigger", func() {
			startServer(false)

			Expect(serverHelper.TriggerSync()).To(Equal(http.StatusAccepted))

			Eventually(func() *status.EnrichmentStatus {
				return serverHelper.SyncStatus().LastEnrichment
			}, 10*time.Second, 100*time.Millisecond).ShouldNot(BeNil())

			st := serverHelper.SyncStatus()
			Expect(st.Phase).To(Equal(status.SyncPhaseComplete))
			Expect(st.Fetched).To(Equal(3))
			Expect(st.Eligible).To(Equal(1))
			Expect(st.LastEnrichment.Succeeded).To(Equal(1))

			page := serverHelper.ListTenders("")
			Expect(page.Total).To(BeEquivalentTo(1))
			Expect(page.Tenders).To(HaveLen(1))
			Expect(page.Tenders[0].Code).To(Equal(open.CodigoExterno))

			stored, code := serverHelper.GetTender(open.CodigoExterno)
			Expect(code).To(Equal(http.StatusOK))
			Expect(stored.Region).To(Equal("Región Metropolitana de Santiago"))
			Expect(stored.Items).To(HaveLen(2))

			_, code = serverHelper.GetTender(awarded.CodigoExterno)
			Expect(code).To(Equal(http.StatusNotFound))

			Expect(mockAPI.DetailCalls(awarded.CodigoExterno)).To(BeZero())
			Expect(mockAPI.DetailCalls(expired.CodigoExterno)).To(BeZero())
		})

		It("filters the listing by region", func() {
			startServer(true)

			Eventually(func() int64 {
				return serverHelper.ListTenders("region=Metropolitana").Total
			}, 10*time.Second, 100*time.Millisecond).Should(BeEquivalentTo(1))

			Expect(serverHelper.ListTenders("region=Antofagasta").Tenders).To(BeEmpty())
		})

		It("persists the sync status to the status file", func() {
			startServer(true)

			Eventually(func() *status.EnrichmentStatus {
				return serverHelper.SyncStatus().LastEnrichment
			}, 10*time.Second, 100*time.Millisecond).ShouldNot(BeNil())

			Expect(serverHelper.StopServer()).To(Succeed())
			serverHelper = nil

			data, err := os.ReadFile(filepath.Join(tempDir, "status.json"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`"phase": "Complete"`))
		})
	})

	Context("when the remote list fails", func() {
		BeforeEach(func() {
			mockAPI = helpers.NewMockAPIServerBuilder(testTicket).WithFailingList().Build()
		})

		It("reports a failed sync and leaves the store empty", func() {
			startServer(false)

			Expect(serverHelper.TriggerSync()).To(Equal(http.StatusAccepted))

			Eventually(func() status.SyncPhase {
				return serverHelper.SyncStatus().Phase
			}, 10*time.Second, 100*time.Millisecond).Should(Equal(status.SyncPhaseFailed))

			Expect(serverHelper.ListTenders("").Tenders).To(BeEmpty())
			Expect(mockAPI.ListCalls()).To(BeNumerically(">=", 1))
		})
	})
})
