// Package coverage evaluates onboarding answers against a declarative
// field-requirement manifest.
//
// The manifest is a versioned, static description of nodes (one per
// questionnaire section) and missions (groups of nodes). Each node carries a
// fixed set of required field keys plus conditional rules of the form "if
// field X has value V, field Y becomes required". The manifest is loaded once
// at startup, is immutable, and is shared across tenants; shipping a new
// manifest version means a new deployment, not a data migration.
package coverage

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	dErrors "grcadmin/pkg/domain-errors"
)

// FieldKey is a canonical questionnaire field identifier, e.g.
// "W.D.3.in_scope_systems_apps".
type FieldKey string

// NodeID identifies one manifest node, e.g. "M1.D".
type NodeID string

// MissionID identifies a named grouping of nodes for cross-section reporting.
type MissionID string

// Known node identifiers. The set is closed: the manifest may not introduce
// nodes outside it, which keeps section lookups total.
const (
	NodeOrgIdentity    NodeID = "M3.A"
	NodeAssurance      NodeID = "M2.B"
	NodeRegulatory     NodeID = "M1.C"
	NodeScope          NodeID = "M1.D"
	NodeDataRisk       NodeID = "M1.E"
	NodeTechnology     NodeID = "M3.F"
	NodeOwnership      NodeID = "M2.G"
	NodeTeams          NodeID = "M2.H"
	NodeCadence        NodeID = "M2.I"
	NodeEvidence       NodeID = "M3.J"
	NodeBaseline       NodeID = "M3.K"
	NodeSuccessMetrics NodeID = "M2.L"
)

// Known mission identifiers.
const (
	MissionScopeRisk       MissionID = "MISSION_1_SCOPE_RISK"
	MissionPeopleWorkflow  MissionID = "MISSION_2_PEOPLE_WORKFLOW"
	MissionSystemsEvidence MissionID = "MISSION_3_SYSTEMS_EVIDENCE"
)

// knownNodes is the closed node enumeration.
var knownNodes = map[NodeID]struct{}{
	NodeOrgIdentity: {}, NodeAssurance: {}, NodeRegulatory: {},
	NodeScope: {}, NodeDataRisk: {}, NodeTechnology: {},
	NodeOwnership: {}, NodeTeams: {}, NodeCadence: {},
	NodeEvidence: {}, NodeBaseline: {}, NodeSuccessMetrics: {},
}

// Op is a conditional-rule comparison operator.
type Op string

const (
	OpEq          Op = "eq"
	OpNe          Op = "ne"
	OpContains    Op = "contains"
	OpNotContains Op = "not_contains"
	OpNotEmpty    Op = "not_empty"
)

// Condition is the trigger of a conditional rule. A condition whose driving
// field has no value evaluates false: the rule is not-yet-triggered, never an
// error.
type Condition struct {
	Field FieldKey `yaml:"field"`
	Op    Op       `yaml:"op"`
	Value any      `yaml:"value"`
}

// ConditionalRule adds fields to a node's required set when its condition
// holds. Rules are additive only: they can never remove a statically required
// field.
type ConditionalRule struct {
	ID          string     `yaml:"id"`
	If          Condition  `yaml:"if"`
	ThenRequire []FieldKey `yaml:"then_require"`
}

// NodeDefinition is one manifest unit of required fields, aligned 1:1 with a
// questionnaire section.
type NodeDefinition struct {
	ID       NodeID            `yaml:"-"`
	Required []FieldKey        `yaml:"required"`
	Optional []FieldKey        `yaml:"optional"`
	Rules    []ConditionalRule `yaml:"rules"`
}

// MissionDefinition groups nodes for cross-section coverage reporting.
type MissionDefinition struct {
	ID    MissionID `yaml:"-"`
	Nodes []NodeID  `yaml:"nodes"`
}

// Manifest is the immutable field-requirement graph.
type Manifest struct {
	Version   string
	Namespace string
	Nodes     map[NodeID]NodeDefinition
	Missions  map[MissionID]MissionDefinition
}

type manifestDoc struct {
	Version   string                          `yaml:"version"`
	Namespace string                          `yaml:"namespace"`
	Nodes     map[NodeID]NodeDefinition       `yaml:"nodes"`
	Missions  map[MissionID]MissionDefinition `yaml:"missions"`
}

// Load parses the embedded default manifest. The engine cannot operate
// without a manifest; callers treat an error as fatal.
func Load() (*Manifest, error) {
	return Parse(defaultManifest)
}

// LoadFile parses a manifest from disk, for deployments that override the
// embedded default.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read coverage manifest %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and integrity-checks a manifest document.
func Parse(data []byte) (*Manifest, error) {
	var doc manifestDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse coverage manifest: %w", err)
	}

	m := &Manifest{
		Version:   doc.Version,
		Namespace: doc.Namespace,
		Nodes:     make(map[NodeID]NodeDefinition, len(doc.Nodes)),
		Missions:  make(map[MissionID]MissionDefinition, len(doc.Missions)),
	}
	for nodeID, def := range doc.Nodes {
		def.ID = nodeID
		m.Nodes[nodeID] = def
	}
	for missionID, def := range doc.Missions {
		def.ID = missionID
		m.Missions[missionID] = def
	}

	if err := m.integrityCheck(); err != nil {
		return nil, err
	}
	return m, nil
}

// integrityCheck rejects manifests that reference unknown nodes, leave nodes
// unassigned to a mission, assign one node to several missions, or carry
// rules that reach outside their own section. Required and optional lists may
// reference any section's keys, so missions can share fields across nodes;
// rules may not, because a rule fires off answers saved with its own section.
func (m *Manifest) integrityCheck() error {
	if m.Version == "" {
		return fmt.Errorf("coverage manifest: version is required")
	}
	for nodeID, def := range m.Nodes {
		if _, ok := knownNodes[nodeID]; !ok {
			return fmt.Errorf("coverage manifest: unknown node %q", nodeID)
		}
		if err := checkRules(nodeID, def.Rules); err != nil {
			return err
		}
	}
	seen := make(map[NodeID]MissionID)
	for missionID, mission := range m.Missions {
		for _, nodeID := range mission.Nodes {
			if _, ok := m.Nodes[nodeID]; !ok {
				return fmt.Errorf("coverage manifest: mission %q references undefined node %q", missionID, nodeID)
			}
			if other, dup := seen[nodeID]; dup {
				return fmt.Errorf("coverage manifest: node %q assigned to both %q and %q", nodeID, other, missionID)
			}
			seen[nodeID] = missionID
		}
	}
	for nodeID := range m.Nodes {
		if _, ok := seen[nodeID]; !ok {
			return fmt.Errorf("coverage manifest: node %q belongs to no mission", nodeID)
		}
	}
	return nil
}

var knownOps = map[Op]struct{}{
	OpEq: {}, OpNe: {}, OpContains: {}, OpNotContains: {}, OpNotEmpty: {},
}

// checkRules validates a node's conditional rules. Field keys are
// "W.<section>.<field>", so every rule key must start with the node's section
// prefix, e.g. "W.E." for node M1.E.
func checkRules(nodeID NodeID, rules []ConditionalRule) error {
	section := string(nodeID)
	if i := strings.IndexByte(section, '.'); i >= 0 {
		section = section[i+1:]
	}
	prefix := "W." + section + "."
	for _, rule := range rules {
		if rule.ID == "" {
			return fmt.Errorf("coverage manifest: node %q has a rule without an id", nodeID)
		}
		if _, ok := knownOps[rule.If.Op]; !ok {
			return fmt.Errorf("coverage manifest: node %q rule %q uses unknown op %q", nodeID, rule.ID, rule.If.Op)
		}
		if !strings.HasPrefix(string(rule.If.Field), prefix) {
			return fmt.Errorf("coverage manifest: node %q rule %q conditions on %q outside section %s",
				nodeID, rule.ID, rule.If.Field, section)
		}
		if len(rule.ThenRequire) == 0 {
			return fmt.Errorf("coverage manifest: node %q rule %q requires nothing", nodeID, rule.ID)
		}
		for _, key := range rule.ThenRequire {
			if !strings.HasPrefix(string(key), prefix) {
				return fmt.Errorf("coverage manifest: node %q rule %q requires %q outside section %s",
					nodeID, rule.ID, key, section)
			}
		}
	}
	return nil
}

// Node returns the definition for nodeID.
func (m *Manifest) Node(nodeID NodeID) (NodeDefinition, error) {
	def, ok := m.Nodes[nodeID]
	if !ok {
		return NodeDefinition{}, dErrors.Newf(dErrors.CodeNotFound, "coverage node %q not in manifest", nodeID)
	}
	return def, nil
}

// Mission returns the definition for missionID.
func (m *Manifest) Mission(missionID MissionID) (MissionDefinition, error) {
	def, ok := m.Missions[missionID]
	if !ok {
		return MissionDefinition{}, dErrors.Newf(dErrors.CodeNotFound, "coverage mission %q not in manifest", missionID)
	}
	return def, nil
}

// NodeIDs returns all node ids in stable order.
func (m *Manifest) NodeIDs() []NodeID {
	ids := make([]NodeID, 0, len(m.Nodes))
	for id := range m.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// MissionIDs returns all mission ids in stable order.
func (m *Manifest) MissionIDs() []MissionID {
	ids := make([]MissionID, 0, len(m.Missions))
	for id := range m.Missions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
