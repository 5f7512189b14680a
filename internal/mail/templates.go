package mail

import "html/template"

type resetLinkData struct {
	Name      string
	ResetLink string
}

type passResetInfoData struct {
	Name string
}

var resetLinkTmpl = template.Must(template.New("reset_link").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Password reset</h2>
    <p>Hi {{.Name}},</p>
    <p>We received a request to reset the password for your account. Click the
    button below to choose a new one. The link expires in one hour.</p>
    <p>
      <a href="{{.ResetLink}}"
         style="display: inline-block; padding: 10px 20px; background-color: #2563eb; color: #fff; text-decoration: none; border-radius: 4px;">
        Reset password
      </a>
    </p>
    <p>If you did not request a reset, you can safely ignore this email.</p>
  </body>
</html>`))

var passResetInfoTmpl = template.Must(template.New("pass_reset_info").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Password changed</h2>
    <p>Hi {{.Name}},</p>
    <p>The password for your account was just changed. If this was you, no
    further action is needed.</p>
    <p>If you did not change your password, please reset it immediately.</p>
  </body>
</html>`))
