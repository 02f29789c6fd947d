package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const outlookSystemPrompt = "You are an SDG and policy expert."

const personalSystemPrompt = "You are a world-class life analyst and futurist. Analyze the future of a person " +
	"based on their current traits, habits, skills, interests, and environment. Cover career potential, " +
	"financial success, personal relationships, intellectual growth and overall life path, and suggest " +
	"specific actions they can take to maximize their future potential."

// fmtValue renders a value with at most two decimals and no trailing zeros.
func fmtValue(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}

func buildOutlookPrompt(o *Outlook) AdvisoryRequest {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a geopolitical analyst and futurist. Analyze the future of %s based on its development indicators.\n", o.Country)
	fmt.Fprintf(&b, "%s indicators (current, forecast, target) for a %d year horizon:\n", o.Country, o.Years)
	for _, e := range o.Entries {
		fmt.Fprintf(&b, "- %s: current=%s forecast=%s target=%s", e.Name, fmtValue(e.Current), fmtValue(e.Forecast), fmtValue(e.Target))
		if e.LowerIsBetter {
			b.WriteString(" (lower is better)")
		}
		if e.Degraded {
			b.WriteString(" (no trend available, assumed unchanged)")
		}
		b.WriteString("\n")
	}
	b.WriteString("Give: 1) top 3 areas at risk, 2) 3 priority policies, 3) quick 2-line summary.\n")

	return AdvisoryRequest{Topic: "outlook", System: outlookSystemPrompt, Prompt: b.String()}
}

func buildPersonalPrompt(a *PersonalAssessment) AdvisoryRequest {
	p := a.Profile
	var b strings.Builder
	b.WriteString("You are a life coach AI.\n")
	fmt.Fprintf(&b, "User info: Age=%d, Gender=%s, Education=%s, Family=%s, Income=%s.\n",
		p.Age, p.Gender, p.Education, p.FamilyStatus, fmtValue(p.Income))
	b.WriteString("Personal factors (1-10 scale):\n")
	for _, s := range a.Scores {
		fmt.Fprintf(&b, "- %s: %d\n", s.Name, s.Rating)
	}
	b.WriteString("\n1) Identify 3 strengths and 3 weaknesses for this person.\n")
	b.WriteString("2) Suggest 3 actionable steps to improve personal growth.\n")
	b.WriteString("3) Give a 2-line motivational summary.\n")

	return AdvisoryRequest{Topic: "personal", System: personalSystemPrompt, Prompt: b.String()}
}
