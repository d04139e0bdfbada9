package render

import tmplmodels "vouch/internal/template/models"

// Built-in layouts. Each pairs a markup skeleton with a base style sheet;
// templates without custom markup pick one by name. The placeholder set is
// the same across layouts so a template can switch styles without editing
// its fields.

func layoutMarkup(layout tmplmodels.Layout) string {
	if m, ok := layoutMarkups[layout]; ok {
		return m
	}
	return layoutMarkups[tmplmodels.LayoutDefault]
}

func layoutStyle(layout tmplmodels.Layout) string {
	if s, ok := layoutStyles[layout]; ok {
		return s
	}
	return layoutStyles[tmplmodels.LayoutDefault]
}

var layoutMarkups = map[tmplmodels.Layout]string{
	tmplmodels.LayoutDefault: `
<div class="certificate">
  <div class="header">
    {{logoImg}}
    <div class="institution-name">{{institution}}</div>
    <h1>Certificate of Completion</h1>
  </div>
  <div class="content">
    <p>This is to certify that</p>
    <h2>{{subjectName}}</h2>
    <p>has successfully completed the course</p>
    <h3>{{course}}</h3>
    <p>Issued on: {{date}}</p>
    <p class="certificate-id">Certificate ID: {{credentialId}}</p>
    <div class="verification-info"><p>Issued by: {{institution}}</p></div>
  </div>
  <div class="footer">
    <div class="signature">{{signatureImg}}<p>Authorized Signature</p></div>
    <div class="seal">{{sealImg}}</div>
  </div>
</div>`,

	tmplmodels.LayoutModern: `
<div class="certificate modern">
  <div class="band"></div>
  <div class="header">
    {{logoImg}}
    <h1>{{institution}}</h1>
  </div>
  <div class="content">
    <p class="eyebrow">Certificate of Achievement</p>
    <h2>{{subjectName}}</h2>
    <p class="course">{{course}}</p>
    <p class="date">{{date}}</p>
    <p class="certificate-id">{{credentialId}}</p>
  </div>
  <div class="footer">
    <div class="signature">{{signatureImg}}<p>Authorized Signature</p></div>
    <div class="seal">{{sealImg}}</div>
  </div>
</div>`,

	tmplmodels.LayoutClassic: `
<div class="certificate classic">
  <div class="border-frame">
    <div class="header">
      {{logoImg}}
      <div class="institution-name">{{institution}}</div>
    </div>
    <h1>Certificate of Completion</h1>
    <div class="content">
      <p>Be it known that</p>
      <h2>{{subjectName}}</h2>
      <p>having fulfilled all requirements, is awarded this certificate for</p>
      <h3>{{course}}</h3>
      <p class="date">Given this day, {{date}}</p>
      <p class="certificate-id">{{credentialId}}</p>
    </div>
    <div class="footer">
      <div class="signature">{{signatureImg}}<p>Authorized Signature</p></div>
      <div class="seal">{{sealImg}}</div>
    </div>
  </div>
</div>`,

	tmplmodels.LayoutMinimal: `
<div class="certificate minimal">
  <div class="content">
    {{logoImg}}
    <h2>{{subjectName}}</h2>
    <p class="course">{{course}}</p>
    <p class="meta">{{institution}} &middot; {{date}}</p>
    <p class="certificate-id">{{credentialId}}</p>
  </div>
  <div class="footer">
    <div class="signature">{{signatureImg}}</div>
    <div class="seal">{{sealImg}}</div>
  </div>
</div>`,
}

var layoutStyles = map[tmplmodels.Layout]string{
	tmplmodels.LayoutDefault: `
.certificate { box-sizing: border-box; width: 1123px; height: 794px; padding: 48px 64px;
  font-family: Georgia, serif; text-align: center; background: #fffdf7;
  border: 12px double #b08d3e; display: flex; flex-direction: column; }
.header .logo { max-height: 70px; max-width: 150px; display: block; margin: 0 auto 8px; object-fit: contain; }
.institution-name { font-size: 26px; font-weight: bold; color: #2c3e50; }
h1 { font-size: 34px; color: #b08d3e; margin: 10px 0; }
.content { flex: 1; } .content h2 { font-size: 40px; color: #2c3e50; margin: 10px 0; }
.content h3 { font-size: 28px; color: #34495e; margin: 8px 0; }
.certificate-id { font-size: 13px; color: #7f8c8d; }
.footer { display: flex; justify-content: space-between; align-items: flex-end; }
.signature img { max-height: 60px; } .signature p { border-top: 1px solid #2c3e50; padding-top: 4px; font-size: 14px; }
.seal img { max-height: 90px; }`,

	tmplmodels.LayoutModern: `
.certificate.modern { box-sizing: border-box; width: 1123px; height: 794px; padding: 56px 72px;
  font-family: Helvetica, Arial, sans-serif; background: #ffffff; position: relative;
  display: flex; flex-direction: column; }
.certificate.modern .band { position: absolute; top: 0; left: 0; width: 18px; height: 100%; background: #2563eb; }
.certificate.modern .header { display: flex; align-items: center; gap: 16px; }
.certificate.modern .logo { max-height: 56px; object-fit: contain; }
.certificate.modern h1 { font-size: 24px; color: #111827; }
.certificate.modern .eyebrow { text-transform: uppercase; letter-spacing: 4px; color: #2563eb; font-size: 14px; }
.certificate.modern .content { flex: 1; margin-top: 48px; }
.certificate.modern h2 { font-size: 48px; margin: 12px 0; color: #111827; }
.certificate.modern .course { font-size: 24px; color: #374151; }
.certificate.modern .certificate-id { font-size: 12px; color: #9ca3af; }
.certificate.modern .footer { display: flex; justify-content: space-between; align-items: flex-end; }
.certificate.modern .signature img { max-height: 56px; } .certificate.modern .seal img { max-height: 80px; }`,

	tmplmodels.LayoutClassic: `
.certificate.classic { box-sizing: border-box; width: 1123px; height: 794px; padding: 24px;
  font-family: 'Times New Roman', Times, serif; background: #fdf6e3; text-align: center; }
.certificate.classic .border-frame { border: 4px solid #8b5a2b; outline: 2px solid #8b5a2b; outline-offset: 6px;
  height: 100%; box-sizing: border-box; padding: 40px 64px; display: flex; flex-direction: column; }
.certificate.classic .logo { max-height: 64px; margin: 0 auto; object-fit: contain; }
.certificate.classic .institution-name { font-size: 24px; font-variant: small-caps; color: #5b3a1a; }
.certificate.classic h1 { font-size: 36px; color: #8b5a2b; margin: 12px 0; }
.certificate.classic .content { flex: 1; } .certificate.classic h2 { font-size: 42px; margin: 8px 0; }
.certificate.classic h3 { font-size: 26px; } .certificate.classic .certificate-id { font-size: 12px; color: #7a6a55; }
.certificate.classic .footer { display: flex; justify-content: space-between; align-items: flex-end; }
.certificate.classic .signature img { max-height: 56px; }
.certificate.classic .signature p { border-top: 1px solid #5b3a1a; padding-top: 4px; font-size: 13px; }
.certificate.classic .seal img { max-height: 88px; }`,

	tmplmodels.LayoutMinimal: `
.certificate.minimal { box-sizing: border-box; width: 1123px; height: 794px; padding: 96px;
  font-family: Helvetica, Arial, sans-serif; background: #ffffff; text-align: center;
  display: flex; flex-direction: column; }
.certificate.minimal .logo { max-height: 48px; margin: 0 auto 24px; object-fit: contain; }
.certificate.minimal .content { flex: 1; }
.certificate.minimal h2 { font-size: 44px; font-weight: 300; margin: 16px 0; color: #111111; }
.certificate.minimal .course { font-size: 22px; color: #444444; }
.certificate.minimal .meta { font-size: 15px; color: #888888; }
.certificate.minimal .certificate-id { font-size: 11px; color: #bbbbbb; letter-spacing: 1px; }
.certificate.minimal .footer { display: flex; justify-content: space-between; align-items: flex-end; }
.certificate.minimal .signature img { max-height: 48px; } .certificate.minimal .seal img { max-height: 72px; }`,
}
