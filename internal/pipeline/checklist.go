package pipeline

import "strings"

// checklistFor picks the safety checklist attached to the rendered permit
// based on task keywords. First matching category wins.
func checklistFor(task string) []string {
	task = strings.ToLower(task)

	hotWork := []string{"welding", "cutting", "hot work", "grinder", "spark"}
	if containsAny(task, hotWork) {
		return []string{
			"welding mask and safety goggles worn",
			"spark containment blanket installed",
			"fire extinguisher staged at the work area",
			"leather gloves and apron worn",
			"combustible materials isolated",
			"fire watch posted",
		}
	}

	confinedOrChemical := []string{"tank", "enclosed", "confined", "cleaning", "washing", "chemical", "solvent"}
	if containsAny(task, confinedOrChemical) {
		return []string{
			"supplied-air or gas-filter respirator worn",
			"oxygen and toxic gas concentration measured",
			"chemical-resistant suit and gloves worn",
			"local exhaust ventilation running",
			"emergency contact chain and rescue gear ready",
			"confined-space attendant posted",
		}
	}

	heights := []string{"height", "ladder", "ceiling", "lamp", "roof", "scaffold"}
	if containsAny(task, heights) {
		return []string{
			"hard hat with chin strap fastened",
			"safety harness worn and anchored",
			"ladder outriggers secured",
			"two-person work rule observed",
			"work platform condition checked",
			"tool drop prevention in place",
		}
	}

	return []string{
		"hard hat with chin strap fastened",
		"safety goggles or face shield worn",
		"safety shoes worn",
		"respirator available where needed",
		"work gloves worn",
		"work area kept clear",
	}
}
