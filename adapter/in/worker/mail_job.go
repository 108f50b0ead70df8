package worker

import (
	"github.com/ayla-solutions/mail-classification-api/core/domain"
	"github.com/ayla-solutions/mail-classification-api/core/service/enrich"
)

// Job is one enrichment unit: a fetched mail plus the progress counter of
// the batch it arrived in.
type Job struct {
	Mail     *domain.Message
	Progress *enrich.Progress
}
