package coverage

import (
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// FieldValueProvider resolves a canonical field key to the answer currently
// held by a wizard. Implementations return nil when the field has never been
// answered.
type FieldValueProvider interface {
	FieldValue(key FieldKey) any
}

// NodeCoverage is the evaluation result for a single node.
type NodeCoverage struct {
	NodeID       NodeID     `json:"node_id"`
	Required     []FieldKey `json:"required"`
	Present      []FieldKey `json:"present"`
	Missing      []FieldKey `json:"missing"`
	PendingRules []string   `json:"pending_rules,omitempty"`
	Percent      int        `json:"percent"`
	Complete     bool       `json:"complete"`
}

// MissionCoverage aggregates node results for one mission. Required, Present
// and Missing are the union of the member nodes' effective sets with
// duplicates folded, so a field key shared by two nodes counts once. Percent
// is computed over that union, not as an average of node percentages.
type MissionCoverage struct {
	MissionID MissionID      `json:"mission_id"`
	Nodes     []NodeCoverage `json:"nodes"`
	Required  []FieldKey     `json:"required"`
	Present   []FieldKey     `json:"present"`
	Missing   []FieldKey     `json:"missing"`
	Percent   int            `json:"percent"`
	Complete  bool           `json:"complete"`
}

// Report is the full coverage picture for one wizard.
type Report struct {
	ManifestVersion string            `json:"manifest_version"`
	Missions        []MissionCoverage `json:"missions"`
	Percent         int               `json:"percent"`
	Complete        bool              `json:"complete"`
}

// EvaluateNode computes coverage for one node. The effective required set is
// the static required list plus the targets of every triggered conditional
// rule; rules whose driving field has no value yet are reported as pending.
func (m *Manifest) EvaluateNode(nodeID NodeID, provider FieldValueProvider) (NodeCoverage, error) {
	def, err := m.Node(nodeID)
	if err != nil {
		return NodeCoverage{}, err
	}
	return evaluateNode(def, provider), nil
}

// EvaluateMission computes coverage for one mission.
func (m *Manifest) EvaluateMission(missionID MissionID, provider FieldValueProvider) (MissionCoverage, error) {
	mission, err := m.Mission(missionID)
	if err != nil {
		return MissionCoverage{}, err
	}
	return m.evaluateMission(mission, provider), nil
}

// EvaluateAll computes coverage for every mission in the manifest. The
// overall percent is computed over the deduped union of every mission's
// required set.
func (m *Manifest) EvaluateAll(provider FieldValueProvider) Report {
	report := Report{ManifestVersion: m.Version, Complete: true}
	requiredSet := make(map[FieldKey]bool)
	presentSet := make(map[FieldKey]bool)
	for _, missionID := range m.MissionIDs() {
		mission := m.Missions[missionID]
		mc := m.evaluateMission(mission, provider)
		report.Missions = append(report.Missions, mc)
		if !mc.Complete {
			report.Complete = false
		}
		for _, key := range mc.Required {
			requiredSet[key] = true
		}
		for _, key := range mc.Present {
			presentSet[key] = true
		}
	}
	report.Percent = percent(len(presentSet), len(requiredSet))
	return report
}

func (m *Manifest) evaluateMission(mission MissionDefinition, provider FieldValueProvider) MissionCoverage {
	mc := MissionCoverage{MissionID: mission.ID, Complete: true}
	nodeIDs := append([]NodeID(nil), mission.Nodes...)
	sort.Slice(nodeIDs, func(i, j int) bool { return nodeIDs[i] < nodeIDs[j] })
	requiredSet := make(map[FieldKey]bool)
	missingSet := make(map[FieldKey]bool)
	for _, nodeID := range nodeIDs {
		nc := evaluateNode(m.Nodes[nodeID], provider)
		mc.Nodes = append(mc.Nodes, nc)
		for _, key := range nc.Required {
			requiredSet[key] = true
		}
		for _, key := range nc.Missing {
			missingSet[key] = true
		}
		if !nc.Complete {
			mc.Complete = false
		}
	}
	mc.Required = sortedKeys(requiredSet)
	for _, key := range mc.Required {
		if missingSet[key] {
			mc.Missing = append(mc.Missing, key)
		} else {
			mc.Present = append(mc.Present, key)
		}
	}
	mc.Percent = percent(len(mc.Present), len(mc.Required))
	return mc
}

func sortedKeys(set map[FieldKey]bool) []FieldKey {
	keys := make([]FieldKey, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func evaluateNode(def NodeDefinition, provider FieldValueProvider) NodeCoverage {
	nc := NodeCoverage{NodeID: def.ID}

	effective := append([]FieldKey(nil), def.Required...)
	for _, rule := range def.Rules {
		triggered, known := evalCondition(rule.If, provider)
		if !known {
			nc.PendingRules = append(nc.PendingRules, rule.ID)
			continue
		}
		if triggered {
			effective = append(effective, rule.ThenRequire...)
		}
	}
	sort.Slice(effective, func(i, j int) bool { return effective[i] < effective[j] })

	nc.Required = effective
	for _, key := range effective {
		if HasValue(provider.FieldValue(key)) {
			nc.Present = append(nc.Present, key)
		} else {
			nc.Missing = append(nc.Missing, key)
		}
	}
	nc.Percent = percent(len(nc.Present), len(nc.Required))
	nc.Complete = len(nc.Missing) == 0
	return nc
}

// evalCondition reports whether the condition holds and whether its driving
// field had a value at all. An unanswered driving field leaves the rule
// dormant rather than failing the evaluation.
func evalCondition(c Condition, provider FieldValueProvider) (triggered, known bool) {
	actual := provider.FieldValue(c.Field)
	if !HasValue(actual) {
		return false, false
	}
	switch c.Op {
	case OpEq:
		return looseEqual(actual, c.Value), true
	case OpNe:
		return !looseEqual(actual, c.Value), true
	case OpContains:
		return containsValue(actual, c.Value), true
	case OpNotContains:
		return !containsValue(actual, c.Value), true
	case OpNotEmpty:
		return true, true
	default:
		return false, true
	}
}

// HasValue reports whether v counts as an answer. Nil, blank strings, empty
// collections, false booleans, zero numerics and nil pointers are all
// "unanswered"; a boolean answer of false is indistinguishable from no answer
// on purpose, so yes/no questions drive conditional rules rather than count
// toward coverage themselves.
func HasValue(v any) bool {
	if v == nil {
		return false
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) != ""
	case bool:
		return t
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return false
		}
		return HasValue(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Struct:
		return !rv.IsZero()
	default:
		return true
	}
}

// looseEqual compares an answer with a manifest literal. Manifest literals
// arrive as YAML-decoded scalars, so comparison goes through a canonical
// string form rather than exact type identity.
func looseEqual(actual, expected any) bool {
	if actual == expected {
		return true
	}
	return canonical(actual) == canonical(expected)
}

func containsValue(actual, expected any) bool {
	want := canonical(expected)
	rv := reflect.ValueOf(actual)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if canonical(rv.Index(i).Interface()) == want {
				return true
			}
		}
		return false
	case reflect.String:
		return strings.Contains(rv.String(), want)
	default:
		return false
	}
}

func canonical(v any) string {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		v = rv.Elem().Interface()
	}
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return strings.TrimSpace(stringify(v))
	}
}

func stringify(v any) string {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f == math.Trunc(f) {
			return strconv.FormatInt(int64(f), 10)
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	default:
		return ""
	}
}

func percent(present, required int) int {
	if required == 0 {
		return 100
	}
	return int(math.Round(100 * float64(present) / float64(required)))
}
