package router

import (
	"fmt"
	"time"

	"fjacquet/gl-posting/internal/dateutils"
	"fjacquet/gl-posting/internal/models"
)

// DocNumberer issues document numbers and session ids for one batch.
// Sequences are per module and start at 1; a DocNumberer must not be shared
// between batches.
type DocNumberer struct {
	prefix string
	seq    map[models.Module]int
}

// NewDocNumberer creates a numberer using prefix, "GP" when empty.
func NewDocNumberer(prefix string) *DocNumberer {
	if prefix == "" {
		prefix = models.DefaultDocPrefix
	}
	return &DocNumberer{prefix: prefix, seq: make(map[models.Module]int)}
}

// Next returns the document number PREFIX_MMDD_SEQ and the session id
// PREFIX_MODULE_YEAR for an entry dated date. UNKNOWN entries get neither.
func (d *DocNumberer) Next(module models.Module, date time.Time) (docNumber, sessionID string) {
	if module == models.ModuleUnknown || module == "" {
		return "", ""
	}
	d.seq[module]++
	docNumber = fmt.Sprintf("%s_%s_%03d", d.prefix, date.Format(dateutils.DocDateLayout), d.seq[module])
	return docNumber, SessionID(d.prefix, module, date.Year())
}

// Issued returns how many numbers were issued for module.
func (d *DocNumberer) Issued(module models.Module) int {
	return d.seq[module]
}

// SessionID formats the posting session for a module and year.
func SessionID(prefix string, module models.Module, year int) string {
	if prefix == "" {
		prefix = models.DefaultDocPrefix
	}
	return fmt.Sprintf("%s_%s_%d", prefix, module, year)
}
