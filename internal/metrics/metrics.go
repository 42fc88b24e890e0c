package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the batch pipelines. Registered on the default registry and
// exposed by the /metrics endpoint the API serves.
var (
	ImportRowsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hris_import_rows_created_total",
		Help: "Employee accounts created by CSV import.",
	})
	ImportRowsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hris_import_rows_skipped_total",
		Help: "CSV import rows skipped as duplicates.",
	})
	ImportRowsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hris_import_rows_failed_total",
		Help: "CSV import rows that failed account creation.",
	})
	CertificatesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hris_certificates_issued_total",
		Help: "Certificates rendered and stored.",
	})
	CertificatesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hris_certificates_failed_total",
		Help: "Certificate generations that failed.",
	})
	MailsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hris_mails_sent_total",
		Help: "Notification mails sent.",
	})
	MailsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hris_mails_failed_total",
		Help: "Notification mails that failed to send.",
	})
)
