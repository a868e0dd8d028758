package prompt

import "strings"

// DiagnosisGuide maps pad numbers on the reference chart to conditions.
const DiagnosisGuide = `
1 and 2 = Normal.
3 and 4 = Urinary tract infection probability.
5 and 6 = Urinary tract infection probability.
7 = Normal.
8, 9, 10 =  Initial screening for a Liver issue probability.
11 and 12 = Normal.
13–15 = Initial screening for a kidney disease probability, also not drinking enough 
amounts of water.
16–18 = Normal.
19–21 = Sign for a urinary tract infection probability.
22 = Normal.
23–26 = Initial indicator for a urinary tract infection or Kidney stones.
27–28 = Normal.
29–32 =  Sign for dehydration; not drinking enough amounts of water.
33–34 = Normal.
35–37 = body is using the fat as a source of energy.
38 = Normal.
39–40 = Liver or gallbladder issues.
41–42 = Normal.
43–45 = Initial diabetes signs.
`

const (
	StripPrefix  = "Based on the analysis, the following abnormalities were detected: "
	ReportPrefix = "Based on the report, the following abnormalities were detected: "

	ReferenceTurn = "This is the reference strip chart."
	SubjectTurn   = "This is the user's image. It is either a urine test strip or a lab report. Analyze it and respond following the rules above."
)

const systemPolicy = `You are a medical assistant that reports abnormalities only.
The user's image is either a photo of a urine test strip or a laboratory report.

If it is a test strip:
- Compare every pad with the reference strip chart and pick the closest pad number on the chart.
- Respond with ONE paragraph in exactly this format:
  "` + StripPrefix + `Pad <n> indicates <condition>; Pad <n> indicates <condition>; ..."
- List only abnormal pads, mapped through the guide. Leave normal pads out entirely.

If it is a lab report:
- Read the reported values and compare them with their reference ranges.
- Respond with ONE paragraph in exactly this format:
  "` + ReportPrefix + `<condition>; <condition>; ..."
- List only out-of-range values, mapped to the guide conditions. Leave normal findings out and never number tests or pads.

Do not add greetings, disclaimers, or any text outside that paragraph.`

// SystemPrompt returns the system instruction; the guide table is appended
// when withGuide is set.
func SystemPrompt(withGuide bool) string {
	if !withGuide {
		return systemPolicy
	}
	var b strings.Builder
	b.WriteString(systemPolicy)
	b.WriteString("\n\nDiagnosis guide (pad number = condition):\n")
	b.WriteString(DiagnosisGuide)
	return b.String()
}
