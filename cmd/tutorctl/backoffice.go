package main

import (
	"context"
	"fmt"

	"github.com/iliyamo/tutoplus/internal/model"
	"github.com/iliyamo/tutoplus/internal/workflow"
)

// ── Registrations ───────────────────────────────────────────────────

func (cli *commandLine) registrations(ctx context.Context, args []string) error {
	fs := cli.flags("registrations")
	status := fs.String("status", "", "en_attente, approuve or refuse")
	if err := parse(fs, args); err != nil {
		return err
	}
	a, err := cli.admin()
	if err != nil {
		return err
	}
	if err := a.LoadRegistrations(ctx); err != nil {
		return err
	}
	a.FilterByStatus(model.RegistrationStatus(*status))
	renderRegistrations(cli.table(), a.VisibleRegistrations())
	return nil
}

func (cli *commandLine) registration(ctx context.Context, args []string) error {
	fs := cli.flags("registration")
	id := fs.String("id", "", "registration id")
	if err := parse(fs, args, "id"); err != nil {
		return err
	}
	a, err := cli.admin()
	if err != nil {
		return err
	}
	if err := a.LoadRegistrations(ctx); err != nil {
		return err
	}
	if err := a.SelectRegistration(*id); err != nil {
		return err
	}
	renderRegistration(cli.table(), a.Selected())
	return nil
}

func (cli *commandLine) registrationStatus(ctx context.Context, args []string) error {
	fs := cli.flags("registration-status")
	id := fs.String("id", "", "registration id")
	status := fs.String("status", "", "en_attente, approuve or refuse")
	if err := parse(fs, args, "id", "status"); err != nil {
		return err
	}
	a, err := cli.admin()
	if err != nil {
		return err
	}
	if err := a.LoadRegistrations(ctx); err != nil {
		return err
	}
	s := model.RegistrationStatus(*status)
	if err := a.SetRegistrationStatus(ctx, *id, s); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Inscription %s: %s\n", *id, s.Display().Label)
	return nil
}

func (cli *commandLine) contactStatus(ctx context.Context, args []string) error {
	fs := cli.flags("contact-status")
	id := fs.String("id", "", "registration id")
	status := fs.String("status", "", "non_contacte, contacte, en_discussion or finalise")
	if err := parse(fs, args, "id", "status"); err != nil {
		return err
	}
	a, err := cli.admin()
	if err != nil {
		return err
	}
	if err := a.LoadRegistrations(ctx); err != nil {
		return err
	}
	s := model.ContactStatus(*status)
	if err := a.SetContactStatus(ctx, *id, s); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Inscription %s: %s\n", *id, s.Display().Label)
	return nil
}

func (cli *commandLine) deleteRegistration(ctx context.Context, args []string) error {
	fs := cli.flags("delete-registration")
	id := fs.String("id", "", "registration id")
	cli.assumeYes(fs)
	if err := parse(fs, args, "id"); err != nil {
		return err
	}
	a, err := cli.admin()
	if err != nil {
		return err
	}
	if err := a.LoadRegistrations(ctx); err != nil {
		return err
	}
	if err := a.DeleteRegistration(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Inscription supprimée")
	return nil
}

// ── Accounts ────────────────────────────────────────────────────────

// accountAdmin returns an Admin with accounts loaded.
func (cli *commandLine) accountAdmin(ctx context.Context) (*workflow.Admin, error) {
	a, err := cli.admin()
	if err != nil {
		return nil, err
	}
	if err := a.LoadAccounts(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (cli *commandLine) accounts(ctx context.Context, args []string) error {
	fs := cli.flags("accounts")
	role := fs.String("role", "", "user, tutor or admin")
	if err := parse(fs, args); err != nil {
		return err
	}
	a, err := cli.accountAdmin(ctx)
	if err != nil {
		return err
	}
	var rows []workflow.Account
	for _, acc := range a.Accounts() {
		if *role == "" || acc.Role == model.Role(*role) {
			rows = append(rows, acc)
		}
	}
	renderAccounts(cli.table(), a, rows)
	return nil
}

func (cli *commandLine) setRole(ctx context.Context, args []string) error {
	fs := cli.flags("set-role")
	user := fs.String("user", "", "account id")
	role := fs.String("role", "", "user, tutor or admin")
	if err := parse(fs, args, "user", "role"); err != nil {
		return err
	}
	a, err := cli.accountAdmin(ctx)
	if err != nil {
		return err
	}
	r := model.Role(*role)
	if err := a.ChangeRole(ctx, *user, r); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Rôle de %s: %s\n", *user, r.Label())
	return nil
}

func (cli *commandLine) setService(ctx context.Context, args []string) error {
	fs := cli.flags("set-service")
	user := fs.String("user", "", "account id")
	service := fs.String("service", "", "en_ligne, primaire, secondaire or cegep")
	if err := parse(fs, args, "user", "service"); err != nil {
		return err
	}
	a, err := cli.accountAdmin(ctx)
	if err != nil {
		return err
	}
	s := model.Service(*service)
	if err := a.SetService(ctx, *user, s); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Forfait de %s: %s\n", *user, s.Label())
	return nil
}

func (cli *commandLine) sendReset(ctx context.Context, args []string) error {
	fs := cli.flags("send-reset")
	user := fs.String("user", "", "account id")
	cli.assumeYes(fs)
	if err := parse(fs, args, "user"); err != nil {
		return err
	}
	a, err := cli.accountAdmin(ctx)
	if err != nil {
		return err
	}
	if err := a.SendPasswordReset(ctx, *user); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Courriel de réinitialisation envoyé")
	return nil
}

func (cli *commandLine) impersonate(ctx context.Context, args []string) error {
	fs := cli.flags("impersonate")
	user := fs.String("user", "", "account id")
	cli.assumeYes(fs)
	if err := parse(fs, args, "user"); err != nil {
		return err
	}
	a, err := cli.accountAdmin(ctx)
	if err != nil {
		return err
	}
	s, err := a.Impersonate(ctx, *user)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Connecté en tant que %s (%s)\n", s.User.Email, s.User.Role.Label())
	return nil
}

func (cli *commandLine) deleteAccount(ctx context.Context, args []string) error {
	fs := cli.flags("delete-account")
	user := fs.String("user", "", "account id")
	hard := fs.Bool("hard", false, "also delete the sign-in identity")
	cli.assumeYes(fs)
	if err := parse(fs, args, "user"); err != nil {
		return err
	}
	a, err := cli.accountAdmin(ctx)
	if err != nil {
		return err
	}
	if *hard {
		err = a.HardDeleteAccount(ctx, *user)
	} else {
		err = a.DeleteAccountData(ctx, *user)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Compte supprimé")
	return nil
}

func (cli *commandLine) assign(ctx context.Context, args []string) error {
	fs := cli.flags("assign")
	student := fs.String("student", "", "student account id")
	tutor := fs.String("tutor", "", "tutor account id, empty to unassign")
	if err := parse(fs, args, "student"); err != nil {
		return err
	}
	a, err := cli.accountAdmin(ctx)
	if err != nil {
		return err
	}
	if err := a.AssignTutor(ctx, *student, *tutor); err != nil {
		return err
	}
	if *tutor == "" {
		fmt.Fprintln(cli.out, "Tuteur retiré")
	} else {
		fmt.Fprintln(cli.out, "Tuteur assigné")
	}
	return nil
}
