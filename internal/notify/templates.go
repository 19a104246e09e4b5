package notify

// Message bodies are deliberately plain; the frontend owns the branded
// templates.

const confirmationBody = `<html>
<body>
<p>Hi {{.Name}},</p>
<p>Your investment in <strong>{{.Details.OpportunityTitle}}</strong> has been confirmed.</p>
<ul>
<li>Amount: {{.Details.Amount}}</li>
<li>Bonds: {{.Details.Bonds}}</li>
<li>Reference: {{.Details.Reference}}</li>
{{if .Details.MintTxHash}}<li>Mint transaction: {{.Details.MintTxHash}}</li>{{end}}
</ul>
<p><a href="{{.FrontendURL}}/portfolio">View your portfolio</a></p>
</body>
</html>`

const cancellationBody = `<html>
<body>
<p>Hi {{.Name}},</p>
<p>Your investment in <strong>{{.Details.OpportunityTitle}}</strong> has been cancelled and the reserved funds released.</p>
<ul>
<li>Amount: {{.Details.Amount}}</li>
<li>Reference: {{.Details.Reference}}</li>
</ul>
<p><a href="{{.FrontendURL}}/opportunities">Browse opportunities</a></p>
</body>
</html>`
