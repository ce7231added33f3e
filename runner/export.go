// Copyright 2025 The agentbench Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package runner

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/safehtml/template"

	"github.com/agentbench/agentbench/evaluation"
)

// Report bundles everything a benchmark run produced for export.
type Report struct {
	Results   []evaluation.TaskResult                `json:"results"`
	Summaries map[string]evaluation.FrameworkSummary `json:"summaries,omitempty"`
	Rankings  map[string][]string                    `json:"rankings,omitempty"`
	Timestamp time.Time                              `json:"export_timestamp"`
}

// Export writes the report in the given format: json, csv or html.
func Export(w io.Writer, report Report, format string) error {
	if report.Timestamp.IsZero() {
		report.Timestamp = time.Now()
	}
	switch format {
	case "json":
		return exportJSON(w, report)
	case "csv":
		return exportCSV(w, report)
	case "html":
		return exportHTML(w, report)
	default:
		return fmt.Errorf("runner: unsupported export format %q", format)
	}
}

func exportJSON(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("runner: encode report: %w", err)
	}
	return nil
}

func exportCSV(w io.Writer, report Report) error {
	cw := csv.NewWriter(w)
	header := []string{
		"framework_name", "use_case_name", "execution_time", "memory_usage",
		"cpu_usage", "total_api_cost", "success", "error_message", "timestamp",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("runner: write csv header: %w", err)
	}
	for _, r := range report.Results {
		row := []string{
			r.FrameworkName,
			r.TaskName,
			strconv.FormatFloat(r.ExecutionTime.Seconds(), 'f', 4, 64),
			strconv.FormatFloat(r.MemoryUsageMB, 'f', 2, 64),
			strconv.FormatFloat(r.CPUUsagePct, 'f', 2, 64),
			strconv.FormatFloat(r.TotalAPICost(), 'f', 6, 64),
			strconv.FormatBool(r.Success),
			r.ErrorMessage,
			r.Timestamp.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("runner: write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

const reportHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Benchmark Report</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 2em; }
th, td { border: 1px solid #ccc; padding: 0.4em 0.8em; text-align: left; }
th { background: #f0f0f0; }
.fail { color: #b00; }
</style>
</head>
<body>
<h1>Benchmark Report</h1>
<p>Generated {{.Timestamp.Format "2006-01-02 15:04:05 MST"}}</p>

<h2>Framework Summaries</h2>
<table>
<tr><th>Framework</th><th>Tasks</th><th>Success Rate</th><th>Avg Time</th><th>Avg Memory (MB)</th><th>Total Cost</th></tr>
{{range $name, $s := .Summaries}}
<tr>
<td>{{$name}}</td>
<td>{{$s.TotalTasks}}</td>
<td>{{printf "%.1f%%" (pct $s.SuccessRate)}}</td>
<td>{{$s.AverageExecutionTime}}</td>
<td>{{printf "%.2f" $s.AverageMemoryUsageMB}}</td>
<td>{{printf "$%.4f" $s.TotalAPICost}}</td>
</tr>
{{end}}
</table>

<h2>Task Results</h2>
<table>
<tr><th>Framework</th><th>Task</th><th>Time</th><th>Success</th><th>Error</th></tr>
{{range .Results}}
<tr>
<td>{{.FrameworkName}}</td>
<td>{{.TaskName}}</td>
<td>{{.ExecutionTime}}</td>
<td>{{if .Success}}ok{{else}}<span class="fail">failed</span>{{end}}</td>
<td>{{.ErrorMessage}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`

var reportTemplate = template.Must(
	template.New("report").Funcs(template.FuncMap{
		"pct": func(v float64) float64 { return v * 100 },
	}).ParseFromTrustedTemplate(template.MakeTrustedTemplate(reportHTML)))

func exportHTML(w io.Writer, report Report) error {
	if err := reportTemplate.Execute(w, report); err != nil {
		return fmt.Errorf("runner: render html report: %w", err)
	}
	return nil
}
