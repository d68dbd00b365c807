// File: internal/results/providers/catalog.go
package providers

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// WeaknessEntry holds reference details for one weakness class.
type WeaknessEntry struct {
	ID          string
	Name        string
	Description string
}

// Sentinel errors for better error handling by the caller.
var (
	ErrNotFound      = errors.New("weakness entry not found")
	ErrAlreadyExists = errors.New("weakness entry already exists")
	ErrInvalidInput  = errors.New("weakness ID and Name cannot be empty")
)

// WeaknessProvider is the lookup interface the enricher consumes.
type WeaknessProvider interface {
	GetWeakness(id string) (*WeaknessEntry, error)
}

// Catalog is an in-memory weakness reference catalog.
type Catalog struct {
	// RWMutex allows multiple concurrent readers or a single exclusive writer.
	mu      sync.RWMutex
	entries map[string]WeaknessEntry
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string]WeaknessEntry)}
}

func validateEntry(e WeaknessEntry) error {
	if e.ID == "" || e.Name == "" {
		return ErrInvalidInput
	}
	return nil
}

// Add inserts a new entry.
func (c *Catalog) Add(e WeaknessEntry) error {
	if err := validateEntry(e); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[e.ID]; exists {
		return ErrAlreadyExists
	}
	c.entries[e.ID] = e
	return nil
}

// Update replaces an existing entry.
func (c *Catalog) Update(e WeaknessEntry) error {
	if err := validateEntry(e); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[e.ID]; !exists {
		return ErrNotFound
	}
	c.entries[e.ID] = e
	return nil
}

// Delete removes an entry by id.
func (c *Catalog) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[id]; !exists {
		return ErrNotFound
	}
	delete(c.entries, id)
	return nil
}

// List returns all entries sorted by ID for deterministic output.
func (c *Catalog) List() []WeaknessEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	list := make([]WeaknessEntry, 0, len(c.entries))
	for _, e := range c.entries {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// GetWeakness retrieves an entry by id. An unknown id yields a generic
// placeholder rather than an error, so enrichment never fails a pipeline run.
func (c *Catalog) GetWeakness(id string) (*WeaknessEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[id]
	if !exists {
		return &WeaknessEntry{
			ID:          id,
			Name:        fmt.Sprintf("%s (Details Not Found)", id),
			Description: "Details for this weakness ID are not available in the local catalog.",
		}, nil
	}
	return &entry, nil
}

// NewBuiltinCatalog creates a catalog preloaded with the CWE classes the
// bundled scanners emit. A fuller data set would be loaded from the MITRE
// distribution; these cover the reference ids used in practice.
func NewBuiltinCatalog() *Catalog {
	c := NewCatalog()
	for _, e := range []WeaknessEntry{
		{ID: "CWE-22", Name: "Improper Limitation of a Pathname to a Restricted Directory ('Path Traversal')", Description: "The product uses external input to construct a pathname without neutralizing sequences such as '..' that can resolve outside the intended directory."},
		{ID: "CWE-78", Name: "Improper Neutralization of Special Elements used in an OS Command ('OS Command Injection')", Description: "The product constructs an OS command using externally-influenced input without neutralizing special elements that could modify the command."},
		{ID: "CWE-79", Name: "Improper Neutralization of Input During Web Page Generation ('Cross-site Scripting')", Description: "The product does not neutralize or incorrectly neutralizes user-controllable input before it is placed in output that is served to other users."},
		{ID: "CWE-89", Name: "Improper Neutralization of Special Elements used in an SQL Command ('SQL Injection')", Description: "The product constructs all or part of an SQL command using externally-influenced input without neutralizing special elements that could modify the intended command."},
		{ID: "CWE-200", Name: "Exposure of Sensitive Information to an Unauthorized Actor", Description: "The product exposes sensitive information to an actor that is not explicitly authorized to have access to that information."},
		{ID: "CWE-284", Name: "Improper Access Control", Description: "The product does not restrict or incorrectly restricts access to a resource from an unauthorized actor."},
		{ID: "CWE-287", Name: "Improper Authentication", Description: "When an actor claims to have a given identity, the product does not prove or insufficiently proves that the claim is correct."},
		{ID: "CWE-312", Name: "Cleartext Storage of Sensitive Information", Description: "The product stores sensitive information in cleartext within a resource that might be accessible to another control sphere."},
		{ID: "CWE-319", Name: "Cleartext Transmission of Sensitive Information", Description: "The product transmits sensitive information in cleartext where it can be observed by unauthorized parties."},
		{ID: "CWE-327", Name: "Use of a Broken or Risky Cryptographic Algorithm", Description: "The product uses a broken or risky cryptographic algorithm or protocol."},
		{ID: "CWE-352", Name: "Cross-Site Request Forgery (CSRF)", Description: "The web application does not, or can not, sufficiently verify whether a request was intentionally provided by the user who submitted it."},
		{ID: "CWE-362", Name: "Concurrent Execution using Shared Resource with Improper Synchronization ('Race Condition')", Description: "The product contains a concurrent code sequence that requires exclusive access to a shared resource, but does not enforce it."},
		{ID: "CWE-502", Name: "Deserialization of Untrusted Data", Description: "The product deserializes untrusted data without sufficiently verifying that the resulting data will be valid."},
		{ID: "CWE-611", Name: "Improper Restriction of XML External Entity Reference", Description: "The product processes an XML document that can contain XML entities with URIs that resolve to documents outside of the intended control sphere."},
		{ID: "CWE-778", Name: "Insufficient Logging", Description: "When a security-critical event occurs, the product either does not record the event or omits important details."},
		{ID: "CWE-798", Name: "Use of Hard-coded Credentials", Description: "The product contains hard-coded credentials, such as a password or cryptographic key."},
		{ID: "CWE-918", Name: "Server-Side Request Forgery (SSRF)", Description: "The web server receives a URL or similar request from an upstream component and retrieves its contents without sufficiently ensuring that the request is being sent to the expected destination."},
		{ID: "CWE-1104", Name: "Use of Unmaintained Third Party Components", Description: "The product relies on third-party components that are not actively supported or maintained by the original developer."},
	} {
		// Entries are compiled in; Add can only fail on a duplicate id,
		// which would be a programming error caught by tests.
		_ = c.Add(e)
	}
	return c
}
