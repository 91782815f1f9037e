package pipeline

import (
	"fmt"
	"strings"

	"github.com/schem-safety/permit-cli/internal/model"
)

// missingMarker is the reserved token the intent prompt instructs the model
// to lead with when the request lacks a task type or a location.
const missingMarker = "MISSING"

const intentPromptTmpl = `You are the intake coordinator for an industrial work-permit system.
Decide whether the request below names BOTH a task type and a work location or target.
A tool or equipment mention is not required.

Conversation so far:
%s

Current request:
%s

If either the task type or the location/target is missing, reply with a single line
starting with "MISSING:" followed by one short clarifying question for the requester.
Otherwise reply with "OK".`

const scoringPromptTmpl = `You are a certified risk assessor applying the Fine-Kinney method
(Risk = Probability x Exposure x Consequence) to a planned industrial task.

Task description:
%s

Retrieved safety evidence:
%s

Using the standard Fine-Kinney scales, output exactly these lines:
P: <probability score>
E: <exposure score>
C: <consequence score>
R: <computed risk score>
Hazard Type: <dominant accident type, a few words>`

const summaryPromptTmpl = `Consolidate this permit-request conversation into one canonical task
description of a single sentence. Include every detail the requester supplied
(substances, equipment, location, timing). Reply with the sentence only.

Conversation so far:
%s

Latest input:
%s`

const narrativePromptTmpl = `You are writing the hazard-factor section of a work-permit report.

Consolidated task:
%s

Retrieved safety evidence:
%s

Summarize the governing hazard factors and the regulations they trace to, in
plain prose a site supervisor can act on. No preamble.`

func intentPrompt(userInput, priorContext string) string {
	if priorContext == "" {
		priorContext = "(none)"
	}
	return fmt.Sprintf(intentPromptTmpl, priorContext, userInput)
}

func scoringPrompt(userInput string, evidence []model.EvidenceItem) string {
	return fmt.Sprintf(scoringPromptTmpl, userInput, formatEvidence(evidence))
}

func summaryPrompt(priorContext, userInput string) string {
	if priorContext == "" {
		priorContext = "(none)"
	}
	return fmt.Sprintf(summaryPromptTmpl, priorContext, userInput)
}

func narrativePrompt(task string, evidence []model.EvidenceItem) string {
	return fmt.Sprintf(narrativePromptTmpl, task, formatEvidence(evidence))
}

// formatEvidence renders the fused evidence set with source attributions,
// one block per item.
func formatEvidence(evidence []model.EvidenceItem) string {
	if len(evidence) == 0 {
		return "(none)"
	}
	blocks := make([]string, 0, len(evidence))
	for _, item := range evidence {
		blocks = append(blocks, fmt.Sprintf("[source: %s]\n%s", item.SourceID, strings.TrimSpace(item.Content)))
	}
	return strings.Join(blocks, "\n\n---\n\n")
}
