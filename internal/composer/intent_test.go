package composer

import (
	"testing"

	"promptvault/internal/tools"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		name    string
		message string
		signals Signals
		want    Intent
	}{
		{
			name:    "chart request",
			message: "Plot a chart of monthly active users",
			want:    IntentVisualization,
		},
		{
			name:    "visualize spelling variant",
			message: "Can you visualise the churn trend?",
			want:    IntentVisualization,
		},
		{
			name:    "draft request",
			message: "Draft a proposal for the new pricing tier",
			want:    IntentDocumentDrafting,
		},
		{
			name:    "narrative request",
			message: "Walk me through the onboarding flow",
			want:    IntentNarrative,
		},
		{
			name:    "off topic",
			message: "What's the weather like today?",
			want:    IntentOffTopic,
		},
		{
			name:    "default is narrative",
			message: "How does billing work?",
			want:    IntentNarrative,
		},
		{
			name:    "visualization beats drafting when both match",
			message: "Draft a report with a chart of revenue",
			want:    IntentVisualization,
		},
		{
			name:    "clarifying continuation forces drafting",
			message: "The audience is executives, formal tone please",
			signals: Signals{AwaitingClarifyingAnswers: true},
			want:    IntentDocumentDrafting,
		},
		{
			name:    "explicit pattern beats continuation signal",
			message: "Actually, show me a chart instead",
			signals: Signals{AwaitingClarifyingAnswers: true},
			want:    IntentVisualization,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyIntent(tt.message, tt.signals); got != tt.want {
				t.Errorf("ClassifyIntent(%q) = %v, want %v", tt.message, got, tt.want)
			}
		})
	}
}

func TestSignalsFromRecentToolCalls(t *testing.T) {
	tests := []struct {
		name  string
		calls []string
		want  bool
	}{
		{name: "no calls", calls: nil, want: false},
		{name: "unrelated tool", calls: []string{tools.ToolShowChart}, want: false},
		{name: "clarifying questions", calls: []string{tools.ToolAskClarifyingQuestions}, want: true},
		{name: "mixed calls", calls: []string{tools.ToolGenerateDocument, tools.ToolAskClarifyingQuestions}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SignalsFromRecentToolCalls(tt.calls)
			if got.AwaitingClarifyingAnswers != tt.want {
				t.Errorf("SignalsFromRecentToolCalls(%v).AwaitingClarifyingAnswers = %v, want %v", tt.calls, got.AwaitingClarifyingAnswers, tt.want)
			}
		})
	}
}
