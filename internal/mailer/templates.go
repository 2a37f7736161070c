package mailer

import "fmt"

// Gabarits HTML des emails transactionnels

func ConfirmationEmailHTML(name, confirmURL string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Confirmez votre adresse email</h2>
		<p>Bonjour %s,</p>
		<p>Merci de vous être inscrit sur <strong>Drivea</strong>. Cliquez sur le lien ci-dessous pour confirmer votre adresse email :</p>
		<p style="text-align: center; margin: 30px 0;">
			<a href="%s" style="display: inline-block; padding: 14px 32px; background-color: #1d6fdc; color: #ffffff; text-decoration: none; border-radius: 8px; font-weight: 600;">
				Confirmer mon email
			</a>
		</p>
		<p style="color: #555;">Ce lien expire dans 1 heure.</p>
		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Drivea</strong>
		</p>
	</div>
</body>
</html>`, name, confirmURL)
}

func TwoFactorCodeHTML(code string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Votre code de vérification</h2>
		<p>Voici votre code de connexion à deux facteurs :</p>
		<p style="text-align: center; font-size: 32px; font-weight: bold; letter-spacing: 8px; color: #1d6fdc;">%s</p>
		<p style="color: #555;">Ce code expire dans 10 minutes. Si vous n'êtes pas à l'origine de cette demande, ignorez cet email.</p>
	</div>
</body>
</html>`, code)
}

func PasswordResetHTML(resetURL string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Réinitialisation de votre mot de passe</h2>
		<p>Vous avez demandé la réinitialisation de votre mot de passe. Cliquez sur le lien ci-dessous :</p>
		<p style="text-align: center; margin: 30px 0;">
			<a href="%s" style="display: inline-block; padding: 14px 32px; background-color: #1d6fdc; color: #ffffff; text-decoration: none; border-radius: 8px; font-weight: 600;">
				Réinitialiser mon mot de passe
			</a>
		</p>
		<p style="color: #555;">Si vous n'êtes pas à l'origine de cette demande, ignorez cet email.</p>
	</div>
</body>
</html>`, resetURL)
}

func SellerPendingAdminHTML(name, email string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Nouveau vendeur en attente d'approbation</h2>
		<p>Un nouveau vendeur vient de s'inscrire et attend votre validation :</p>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<tr>
				<td style="padding: 10px; border: 1px solid #ddd; font-weight: bold;">Nom</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%s</td>
			</tr>
			<tr>
				<td style="padding: 10px; border: 1px solid #ddd; font-weight: bold;">Email</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%s</td>
			</tr>
		</table>
		<p style="color: #555;">Connectez-vous au tableau de bord admin pour examiner la demande.</p>
	</div>
</body>
</html>`, name, email)
}
