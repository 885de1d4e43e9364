package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/dftest-dev/dftest/internal/domain/results"
	"github.com/dftest-dev/dftest/internal/domain/values"
)

// maxSARIFRows caps the invalid row indices attached to a result.
const maxSARIFRows = 100

type sarifMapper struct {
	result    *results.Results
	rulesPath string
	cwd       string                     // Current working directory
	artifacts map[string]*sarif.Artifact // Deduplicated artifacts
	ruleIDs   map[*results.BindingResult]string
}

func newSARIFMapper(res *results.Results, rulesPath string) *sarifMapper {
	cwd, _ := os.Getwd() // Best effort, ignore error
	return &sarifMapper{
		result:    res,
		rulesPath: rulesPath,
		cwd:       cwd,
		artifacts: make(map[string]*sarif.Artifact),
		ruleIDs:   make(map[*results.BindingResult]string),
	}
}

// mapToRun populates the SARIF run with rules, results, artifacts, and invocations.
func (m *sarifMapper) mapToRun(run *sarif.Run) {
	m.addRules(run)
	m.addResults(run)
	m.addArtifacts(run)
	m.addInvocation(run)
	m.addProperties(run)
}

// addRules converts bound tests to SARIF rules. Rule IDs are column/test,
// suffixed with the binding index when a column carries the same test twice.
func (m *sarifMapper) addRules(run *sarif.Run) {
	seen := make(map[string]bool)
	for _, b := range m.result.Bindings() {
		id := b.Column() + "/" + b.Name()
		if seen[id] {
			id = fmt.Sprintf("%s#%d", id, b.Index())
		}
		seen[id] = true
		m.ruleIDs[b] = id

		rule := sarif.NewReportingDescriptor().WithID(id)
		rule.WithName(b.Name())

		short := fmt.Sprintf("%s on column %s", b.Name(), b.Column())
		rule.WithShortDescription(&sarif.MultiformatMessageString{
			Text: &short,
		})

		rule.WithDefaultConfiguration(&sarif.ReportingConfiguration{
			Level: "warning",
		})

		props := sarif.NewPropertyBag()
		props.WithTags([]string{b.Kind()})
		props.Add("column", b.Column())
		rule.WithProperties(props)

		run.Tool.Driver.AddRule(rule)
	}
}

// addResults converts binding outcomes to SARIF results.
func (m *sarifMapper) addResults(run *sarif.Run) {
	for _, b := range m.result.Bindings() {
		run.AddResult(m.mapBindingResult(b))
	}
}

// mapBindingResult converts a single BindingResult to a SARIF Result.
func (m *sarifMapper) mapBindingResult(b *results.BindingResult) *sarif.Result {
	result := sarif.NewRuleResult(m.ruleIDs[b])

	counts := b.Counts()
	result.Level = m.mapLevel(b)
	result.Kind = m.mapKind(b)
	result.Message = sarif.NewTextMessage(m.message(b))

	if loc := m.extractLocation(b); loc != nil {
		result.Locations = []*sarif.Location{loc}
	}

	props := sarif.NewPropertyBag()
	props.Add("column", b.Column())
	props.Add("counts", counts)
	if rate, ok := counts.ValidRate(); ok {
		props.Add("validRate", rate)
		props.Add("integrityLevel", m.levelsFor(b.Column()).Colorcode(rate))
	}
	if rows := b.InvalidRows(); len(rows) > 0 {
		if len(rows) > maxSARIFRows {
			rows = rows[:maxSARIFRows]
			props.Add("invalidRowsTruncated", true)
		}
		props.Add("invalidRows", rows)
	}
	if n := b.ErrorCount(); n > 0 {
		props.Add("cellErrors", n)
	}
	result.WithProperties(props)

	return result
}

func (m *sarifMapper) levelsFor(column string) values.IntegrityLevels {
	col, err := m.result.ColumnResults(column)
	if err != nil {
		return values.DefaultIntegrityLevels()
	}
	return col.IntegrityLevels()
}

// mapLevel derives the SARIF level from the binding outcome. Invalid rows are
// an error when the valid rate falls in the lowest band.
func (m *sarifMapper) mapLevel(b *results.BindingResult) string {
	counts := b.Counts()
	switch {
	case b.ErrorCount() > 0:
		return "error"
	case counts.Invalid > 0:
		rate, _ := counts.ValidRate()
		switch m.levelsFor(b.Column()).Colorcode(rate) {
		case "red", values.ColorGrey:
			return "error"
		default:
			return "warning"
		}
	case counts.Evaluated() == 0:
		return "none"
	default:
		return "note"
	}
}

func (m *sarifMapper) mapKind(b *results.BindingResult) string {
	counts := b.Counts()
	switch {
	case b.ErrorCount() > 0, counts.Invalid > 0:
		return "fail"
	case counts.Evaluated() == 0:
		return "notApplicable"
	default:
		return "pass"
	}
}

func (m *sarifMapper) message(b *results.BindingResult) string {
	counts := b.Counts()
	switch {
	case counts.Evaluated() == 0:
		return fmt.Sprintf("Test %s on column %s was not applicable to any row", b.Name(), b.Column())
	case counts.Invalid == 0:
		return fmt.Sprintf("Test %s on column %s passed: %d/%d rows valid", b.Name(), b.Column(), counts.Valid, counts.Total())
	default:
		return fmt.Sprintf("Test %s on column %s failed: %d/%d rows invalid", b.Name(), b.Column(), counts.Invalid, counts.Total())
	}
}

// extractLocation points at the rules file line the binding was declared on.
func (m *sarifMapper) extractLocation(b *results.BindingResult) *sarif.Location {
	path := b.Source()
	if path == "" {
		path = m.rulesPath
	}
	if path == "" {
		return nil
	}
	return m.createLocation(path, b.Line())
}

func (m *sarifMapper) createLocation(path string, line int) *sarif.Location {
	uri := m.normalizeURI(path)

	m.registerArtifact(path)

	pLoc := sarif.NewPhysicalLocation().
		WithArtifactLocation(sarif.NewArtifactLocation().WithURI(uri))

	if line > 0 {
		pLoc.WithRegion(sarif.NewRegion().WithStartLine(line))
	}

	return sarif.NewLocation().WithPhysicalLocation(pLoc)
}

// normalizeURI converts a file path to a SARIF-compliant URI.
func (m *sarifMapper) normalizeURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path) // Fallback to original
	}

	// Try to make relative to CWD
	if m.cwd != "" {
		if rel, err := filepath.Rel(m.cwd, abs); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}

	return "file://" + filepath.ToSlash(abs)
}

// registerArtifact adds a rules file to the artifacts map (deduplicated),
// embedding its text when it is small enough.
func (m *sarifMapper) registerArtifact(path string) {
	uri := m.normalizeURI(path)
	if _, exists := m.artifacts[uri]; exists {
		return
	}

	artifact := sarif.NewArtifact().
		WithLocation(sarif.NewArtifactLocation().WithURI(uri))

	const maxContentSize = 512 * 1024

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		artifact.WithLength(int(info.Size()))
		if info.Size() < maxContentSize {
			//nolint:gosec // G304: path is the rules file given on the command line
			content, err := os.ReadFile(path)
			if err == nil {
				artifact.WithContents(sarif.NewArtifactContent().WithText(string(content)))
			}
		}
	}

	m.artifacts[uri] = artifact
}

// addArtifacts adds collected artifacts to the run.
func (m *sarifMapper) addArtifacts(run *sarif.Run) {
	for _, artifact := range m.artifacts {
		run.AddArtifact(artifact)
	}
}

// addInvocation adds execution metadata to the run.
func (m *sarifMapper) addInvocation(run *sarif.Run) {
	invocation := sarif.NewInvocation()

	summary := m.result.Summary()
	invocation.ExecutionSuccessful = ptrBool(summary.CellErrorCount == 0)

	startTime := m.result.StartedAt().UTC().Format("2006-01-02T15:04:05.000Z")
	endTime := m.result.FinishedAt().UTC().Format("2006-01-02T15:04:05.000Z")
	invocation.StartTimeUtc = &startTime
	invocation.EndTimeUtc = &endTime

	if hostname, err := os.Hostname(); err == nil {
		invocation.Machine = &hostname
	}

	if m.cwd != "" {
		cwd := "file://" + filepath.ToSlash(m.cwd)
		invocation.WorkingDirectory = sarif.NewArtifactLocation().WithURI(cwd)
	}

	meta := m.result.Metadata()
	props := sarif.NewPropertyBag()
	props.Add("rulesName", meta.Name)
	props.Add("rulesVersion", meta.Version)
	props.Add("runId", m.result.RunID().String())
	props.Add("rows", m.result.RowCount())
	props.Add("untestedColumns", m.result.UntestedColumns())
	invocation.WithProperties(props)

	run.AddInvocation(invocation)
}

// addProperties adds summary statistics to run properties.
func (m *sarifMapper) addProperties(run *sarif.Run) {
	props := sarif.NewPropertyBag()
	props.Add("summary", m.result.Summary())
	run.WithProperties(props)
}

func ptrBool(b bool) *bool {
	return &b
}
