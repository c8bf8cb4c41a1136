// Package notify emails applicants the loan products they matched.
package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"math"
	"strings"
	texttemplate "text/template"

	"github.com/joseph-ayodele/loan-offers/internal/entity"
)

// MaxProducts is how many matches one email lists.
const MaxProducts = 10

// Message is a composed email.
type Message struct {
	To         string
	Name       string
	Subject    string
	HTML       string
	Text       string
	MatchCount int
}

type productCard struct {
	ProductName  string
	MatchPercent int
	InterestRate string
	LoanAmount   string
	Reason       string
}

type emailData struct {
	Name     string
	Count    int
	Plural   bool
	Products []productCard
}

var htmlTmpl = htmltemplate.Must(htmltemplate.New("email").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Your Personalized Loan Matches</title></head>
<body style="margin:0;padding:0;font-family:Arial,sans-serif;background-color:#f5f5f5;">
<table width="100%" cellpadding="0" cellspacing="0" style="padding:40px 0;"><tr><td align="center">
<table width="600" cellpadding="0" cellspacing="0" style="background-color:#fff;border-radius:16px;">
<tr><td style="background:#667eea;padding:40px 32px;text-align:center;">
<h1 style="margin:0;color:#fff;font-size:28px;">Your Personalized Loan Matches</h1>
<p style="margin:12px 0 0 0;color:#fff;font-size:16px;">We found {{.Count}} loan{{if .Plural}}s{{end}} for your profile!</p>
</td></tr>
<tr><td style="padding:32px 32px 24px 32px;">
<h2 style="margin:0 0 12px 0;font-size:22px;">Hello {{.Name}}!</h2>
<p style="margin:0;color:#666;font-size:16px;line-height:1.6;">Based on your income and credit score, you are likely eligible for the following loan products.</p>
</td></tr>
<tr><td style="padding:0 32px 32px 32px;">
{{range .Products}}<div style="border-radius:12px;padding:24px;margin-bottom:16px;border-left:4px solid #4CAF50;">
<h3 style="margin:0 0 8px 0;font-size:18px;">{{.ProductName}}</h3>
<p style="margin:0;font-weight:600;">{{.MatchPercent}}% Match</p>
<p style="margin:8px 0 0 0;">Interest Rate: <strong>{{.InterestRate}}</strong> per annum</p>
<p style="margin:4px 0 0 0;">Loan Amount: <strong>{{.LoanAmount}}</strong></p>
<p style="margin:8px 0 0 0;color:#666;font-size:13px;"><strong>Match Reason:</strong> {{.Reason}}</p>
</div>
{{end}}</td></tr>
<tr><td style="padding:32px;color:#999;font-size:13px;text-align:center;">This is an automated notification from the loan eligibility engine.</td></tr>
</table>
</td></tr></table>
</body>
</html>
`))

var textTmpl = texttemplate.Must(texttemplate.New("email").Parse(`Hello {{.Name}}!

We found {{.Count}} loan{{if .Plural}}s{{end}} for your profile:
{{range $i, $p := .Products}}
{{$p.ProductName}} ({{$p.MatchPercent}}% match)
  Interest rate: {{$p.InterestRate}}
  Loan amount:   {{$p.LoanAmount}}
  Why:           {{$p.Reason}}
{{end}}`))

// Subject is the email subject for n matches.
func Subject(n int) string {
	suffix := "es"
	if n == 1 {
		suffix = ""
	}
	return fmt.Sprintf("%d Loan Match%s Found For You!", n, suffix)
}

// Compose renders the email for an applicant's matches, best first. Only the
// first MaxProducts are listed; the subject counts them all.
func Compose(a entity.Applicant, matches []entity.MatchView) (Message, error) {
	name := strings.TrimSpace(a.Name)
	if name == "" {
		name = "Valued Customer"
	}
	data := emailData{Name: name, Count: len(matches), Plural: len(matches) != 1}
	for i, m := range matches {
		if i == MaxProducts {
			break
		}
		data.Products = append(data.Products, card(m))
	}

	var html, text bytes.Buffer
	if err := htmlTmpl.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render html: %w", err)
	}
	if err := textTmpl.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("render text: %w", err)
	}
	return Message{
		To:         a.Email,
		Name:       name,
		Subject:    Subject(len(matches)),
		HTML:       html.String(),
		Text:       text.String(),
		MatchCount: len(matches),
	}, nil
}

func card(m entity.MatchView) productCard {
	p := m.Product
	c := productCard{
		ProductName:  p.ProductName,
		MatchPercent: int(math.Round(m.MatchScore * 100)),
		InterestRate: "Contact for rate",
		LoanAmount:   FormatAmount(p),
		Reason:       m.MatchReason,
	}
	if c.ProductName == "" {
		c.ProductName = "Personal Loan"
	}
	if p.InterestRate != nil {
		c.InterestRate = *p.InterestRate
	}
	return c
}

// FormatAmount renders the product's ceiling in lakh when it is known.
func FormatAmount(p entity.LoanProduct) string {
	switch {
	case p.LoanAmountMax != nil && *p.LoanAmountMax > 0:
		return fmt.Sprintf("₹%.1fL", *p.LoanAmountMax/100000)
	case p.LoanAmount != nil && *p.LoanAmount != "":
		return *p.LoanAmount
	default:
		return "Up to ₹40L"
	}
}
