package filter

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/zulandar/qadesk/internal/metrics"
	"github.com/zulandar/qadesk/internal/models"
)

// AllSelection is the navigation root. It and its aliases disable the
// selection filter.
const AllSelection = "全部"

// Query is the user's current keyword and navigation selection.
type Query struct {
	Keyword   string
	Selection string
}

// IsAll reports whether the selection is the navigation root.
func (q Query) IsAll() bool {
	return q.Selection == "" || q.Selection == AllSelection || q.Selection == "all"
}

// MatchesKeyword reports whether the JSON form of rec contains keyword,
// ignoring case. An empty keyword matches everything.
func MatchesKeyword(rec Record, keyword string) bool {
	if keyword == "" {
		return true
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(buf.String()), strings.ToLower(keyword))
}

// Apply keeps the records matching the keyword, then those whose resolved
// module or system equals the selection. Order is preserved.
func Apply(records []Record, q Query, res *Resolver) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if !MatchesKeyword(rec, q.Keyword) {
			continue
		}
		if !q.IsAll() {
			o := res.Owner(rec)
			if o.Module != q.Selection && o.System != q.Selection {
				continue
			}
		}
		out = append(out, rec)
	}
	return out
}

// Tree is the navigation tree with counts recomputed for one view.
type Tree struct {
	All   int                   `json:"all"`
	Nodes []models.SystemModule `json:"nodes"`
}

// Count recomputes navigation counts. A system counts records resolved to
// it; a module counts records resolved to it under its own parent system,
// so module counts never exceed their system's. Records without an owner
// only count towards All.
func Count(records []Record, tree []models.SystemModule, res *Resolver) Tree {
	owners := make([]Owner, len(records))
	for i, rec := range records {
		owners[i] = res.Owner(rec)
	}

	nodes := make([]models.SystemModule, len(tree))
	for i, sys := range tree {
		node := sys
		node.Count = 0
		for _, o := range owners {
			if o.System == sys.Name {
				node.Count++
			}
		}
		node.Children = make([]models.SystemModule, len(sys.Children))
		for j, mod := range sys.Children {
			child := mod
			child.Count = 0
			for _, o := range owners {
				if o.Module == mod.Name && o.System == sys.Name {
					child.Count++
				}
			}
			node.Children[j] = child
		}
		nodes[i] = node
	}
	return Tree{All: len(records), Nodes: nodes}
}

// Outcome is a filtered view and its navigation counts.
type Outcome struct {
	View    View     `json:"view"`
	Records []Record `json:"records"`
	Tree    Tree     `json:"tree"`
}

// Run filters and counts one view, recording the elapsed time. Counts are
// taken over the unfiltered records.
func Run(v View, records []Record, tree []models.SystemModule, q Query, res *Resolver) Outcome {
	start := time.Now()
	out := Outcome{
		View:    v,
		Records: Apply(records, q, res),
		Tree:    Count(records, tree, res),
	}
	metrics.FilterSeconds.WithLabelValues(string(v)).Observe(time.Since(start).Seconds())
	return out
}

// Templates filters templates by category ("all" or empty for any) and by
// keyword over name, description and tags.
func Templates(list []models.TestTemplate, category, keyword string) []models.TestTemplate {
	k := strings.ToLower(keyword)
	var out []models.TestTemplate
	for _, t := range list {
		if category != "" && category != "all" && t.Category != category {
			continue
		}
		if k != "" && !containsFold(k, t.Name, t.Description) && !containsFold(k, t.Tags...) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Candidates filters requirements for the import dialog. Empty system or
// module matches any; the keyword is checked against title and description.
func Candidates(reqs []models.Requirement, system, module, keyword string) []models.Requirement {
	k := strings.ToLower(keyword)
	var out []models.Requirement
	for _, r := range reqs {
		if system != "" && r.System != system {
			continue
		}
		if module != "" && r.Module != module {
			continue
		}
		if k != "" && !containsFold(k, r.Title, r.Description) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// containsFold reports whether any field contains the lowercased needle.
func containsFold(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
