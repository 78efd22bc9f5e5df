package coverage

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

// mapProvider backs evaluator tests with literal field values.
type mapProvider map[FieldKey]any

func (p mapProvider) FieldValue(key FieldKey) any { return p[key] }

type EvaluateSuite struct {
	suite.Suite
	manifest *Manifest
}

func (s *EvaluateSuite) SetupTest() {
	m, err := Load()
	s.Require().NoError(err)
	s.manifest = m
}

func TestEvaluateSuite(t *testing.T) {
	suite.Run(t, new(EvaluateSuite))
}

func (s *EvaluateSuite) TestNodeWithNoAnswers() {
	nc, err := s.manifest.EvaluateNode(NodeScope, mapProvider{})
	s.Require().NoError(err)

	s.Equal(0, nc.Percent)
	s.False(nc.Complete)
	s.Empty(nc.Present)
	s.Len(nc.Missing, 6)
}

func (s *EvaluateSuite) TestNodePercentRounds() {
	// 1 of 6 required answered: 100/6 rounds to 17, not 16.
	nc, err := s.manifest.EvaluateNode(NodeScope, mapProvider{
		"W.D.4.in_scope_processes": []string{"payments"},
	})
	s.Require().NoError(err)

	s.Equal(17, nc.Percent)
	s.Len(nc.Present, 1)
	s.False(nc.Complete)
}

func (s *EvaluateSuite) TestNodeWithoutRequiredFieldsIsComplete() {
	nc, err := s.manifest.EvaluateNode(NodeBaseline, mapProvider{})
	s.Require().NoError(err)

	s.Equal(100, nc.Percent)
	s.True(nc.Complete)
	s.Empty(nc.Required)
}

func (s *EvaluateSuite) TestUnknownNode() {
	_, err := s.manifest.EvaluateNode(NodeID("M9.Z"), mapProvider{})
	s.Error(err)
}

func (s *EvaluateSuite) TestConditionalRuleTriggered() {
	nc, err := s.manifest.EvaluateNode(NodeDataRisk, mapProvider{
		"W.E.1.data_types_processed": []string{"pii"},
		"W.E.2.payment_card_data":    true,
	})
	s.Require().NoError(err)

	s.Contains(nc.Required, FieldKey("W.E.2b.payment_card_details"))
	s.Contains(nc.Missing, FieldKey("W.E.2b.payment_card_details"))
	s.False(nc.Complete)
	s.Empty(nc.PendingRules)
}

func (s *EvaluateSuite) TestConditionalRuleSatisfied() {
	nc, err := s.manifest.EvaluateNode(NodeDataRisk, mapProvider{
		"W.E.1.data_types_processed":  []string{"pii"},
		"W.E.2.payment_card_data":     true,
		"W.E.2b.payment_card_details": map[string]any{"merchant_level": "L1"},
	})
	s.Require().NoError(err)

	s.True(nc.Complete)
	s.Equal(100, nc.Percent)
}

func (s *EvaluateSuite) TestConditionalRuleNotTriggeredByFalse() {
	// A boolean false means "no answer", so the rule stays dormant and the
	// node is complete on static requirements alone.
	nc, err := s.manifest.EvaluateNode(NodeDataRisk, mapProvider{
		"W.E.1.data_types_processed": []string{"pii"},
		"W.E.2.payment_card_data":    false,
	})
	s.Require().NoError(err)

	s.NotContains(nc.Required, FieldKey("W.E.2b.payment_card_details"))
	s.True(nc.Complete)
	s.Contains(nc.PendingRules, "payment-card-details")
}

func (s *EvaluateSuite) TestConditionalRulePendingWhenUnanswered() {
	nc, err := s.manifest.EvaluateNode(NodeTechnology, mapProvider{})
	s.Require().NoError(err)

	s.Contains(nc.PendingRules, "sso-protocol")
	s.NotContains(nc.Required, FieldKey("W.F.2b.sso_protocol"))
}

func (s *EvaluateSuite) TestMissionAggregatesOverRequiredSets() {
	// Mission 1 spans M1.C (1 required), M1.D (6) and M1.E (1): 8 keys.
	// Answering two of them is 2/8 = 25%.
	mc, err := s.manifest.EvaluateMission(MissionScopeRisk, mapProvider{
		"W.C.1.primary_regulators":   []string{"SAMA"},
		"W.E.1.data_types_processed": []string{"pii"},
	})
	s.Require().NoError(err)

	s.Equal(25, mc.Percent)
	s.False(mc.Complete)
	s.Len(mc.Nodes, 3)
}

func (s *EvaluateSuite) TestMissionDedupesSharedFieldKeys() {
	m, err := Parse([]byte(`
version: "test"
nodes:
  M1.C: {required: [W.C.1.primary_regulators, W.D.4.in_scope_processes]}
  M1.D: {required: [W.D.4.in_scope_processes]}
missions:
  MISSION_1_SCOPE_RISK: {nodes: [M1.C, M1.D]}
`))
	s.Require().NoError(err)

	// W.D.4 is required by both nodes. The mission union holds two keys, so
	// answering the shared one is 1/2, not 2/3.
	mc, err := m.EvaluateMission(MissionScopeRisk, mapProvider{
		"W.D.4.in_scope_processes": []string{"payments"},
	})
	s.Require().NoError(err)

	s.Equal([]FieldKey{"W.C.1.primary_regulators", "W.D.4.in_scope_processes"}, mc.Required)
	s.Equal([]FieldKey{"W.D.4.in_scope_processes"}, mc.Present)
	s.Equal([]FieldKey{"W.C.1.primary_regulators"}, mc.Missing)
	s.Equal(50, mc.Percent)
	s.False(mc.Complete)

	report := m.EvaluateAll(mapProvider{
		"W.D.4.in_scope_processes": []string{"payments"},
	})
	s.Equal(50, report.Percent)
}

func (s *EvaluateSuite) TestEvaluateAllEmpty() {
	report := s.manifest.EvaluateAll(mapProvider{})

	s.False(report.Complete)
	s.Len(report.Missions, 3)
	s.Equal(s.manifest.Version, report.ManifestVersion)
	s.Equal(0, report.Percent)
}

func TestHasValue(t *testing.T) {
	absent := []any{
		nil,
		"",
		"   ",
		false,
		0,
		0.0,
		[]string{},
		map[string]string{},
		(*int)(nil),
	}
	for _, v := range absent {
		if HasValue(v) {
			t.Errorf("HasValue(%#v) = true, want false", v)
		}
	}

	three := 3
	present := []any{
		"x",
		true,
		1,
		2.5,
		[]string{"a"},
		map[string]string{"k": "v"},
		&three,
	}
	for _, v := range present {
		if !HasValue(v) {
			t.Errorf("HasValue(%#v) = false, want true", v)
		}
	}
}

func TestConditionOps(t *testing.T) {
	p := mapProvider{
		"tier":     "gold",
		"tools":    []string{"jira", "snow"},
		"enabled":  true,
		"headline": "multi-region deployment",
	}

	cases := []struct {
		name      string
		cond      Condition
		triggered bool
		known     bool
	}{
		{"eq match", Condition{Field: "tier", Op: OpEq, Value: "gold"}, true, true},
		{"eq mismatch", Condition{Field: "tier", Op: OpEq, Value: "silver"}, false, true},
		{"eq bool", Condition{Field: "enabled", Op: OpEq, Value: true}, true, true},
		{"ne", Condition{Field: "tier", Op: OpNe, Value: "silver"}, true, true},
		{"contains", Condition{Field: "tools", Op: OpContains, Value: "jira"}, true, true},
		{"not_contains", Condition{Field: "tools", Op: OpNotContains, Value: "github"}, true, true},
		{"contains substring", Condition{Field: "headline", Op: OpContains, Value: "region"}, true, true},
		{"not_empty", Condition{Field: "tools", Op: OpNotEmpty}, true, true},
		{"unanswered field", Condition{Field: "missing", Op: OpEq, Value: "x"}, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			triggered, known := evalCondition(tc.cond, p)
			if triggered != tc.triggered || known != tc.known {
				t.Errorf("evalCondition(%+v) = (%v, %v), want (%v, %v)",
					tc.cond, triggered, known, tc.triggered, tc.known)
			}
		})
	}
}
