package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/iliyamo/tutoplus/internal/config"
	"github.com/iliyamo/tutoplus/internal/gateway"
	"github.com/iliyamo/tutoplus/internal/model"
	"github.com/iliyamo/tutoplus/internal/workflow"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, args []string) error
}

type commandLine struct {
	cfg   *config.ClientConfig
	gw    *gateway.Client
	store sessionStore
	term  *terminal
	out   io.Writer
	now   func() time.Time
	log   *zap.Logger
}

func (cli *commandLine) commands() []command {
	return []command{
		{"login", "-email EMAIL\tsign in, the password is prompted", cli.login},
		{"logout", "\tsign out and forget the stored session", cli.logout},
		{"signup", "-email -parent -student -phone -service -address\tcreate an account and file its registration", cli.signup},
		{"reset-password", "-email EMAIL\temail a password reset link", cli.resetPassword},
		{"recover", "-link URL | -token TOKEN\tchoose a new password from a reset link", cli.recoverPassword},
		{"passwd", "\tchange the password of the signed-in account", cli.passwd},
		{"whoami", "\tshow the signed-in account", cli.whoami},
		{"dashboard", "\tstudent dashboard: registration, tutor and sessions", cli.dashboard},

		{"registrations", "[-status S]\tlist registrations, newest first", cli.registrations},
		{"registration", "-id ID\tshow one registration", cli.registration},
		{"registration-status", "-id ID -status S\tapprove, refuse or reset a registration", cli.registrationStatus},
		{"contact-status", "-id ID -status S\tmove the outreach tracker", cli.contactStatus},
		{"delete-registration", "-id ID [-y]\tdelete a registration", cli.deleteRegistration},
		{"accounts", "[-role R]\tlist accounts with their service and tutor", cli.accounts},
		{"set-role", "-user ID -role R\tchange an account's role", cli.setRole},
		{"set-service", "-user ID -service S\tchange an account's service tier", cli.setService},
		{"send-reset", "-user ID [-y]\temail a reset link to an account", cli.sendReset},
		{"impersonate", "-user ID [-y]\tsign in as another account", cli.impersonate},
		{"delete-account", "-user ID [-hard] [-y]\tdelete an account's data, or the whole account", cli.deleteAccount},
		{"assign", "-student ID [-tutor ID]\tassign a tutor, or remove the assignment", cli.assign},

		{"sessions", "[-status S] [-paid yes|no] [-tutor ID] [-student ID]\tlist sessions", cli.sessions},
		{"session-create", "-student ID -title T -date D [-start -end -notes -tutor]\tschedule a session", cli.sessionCreate},
		{"session-update", "-id ID [fields]\tedit a session", cli.sessionUpdate},
		{"session-status", "-id ID -status S\tchange a session's status", cli.sessionStatus},
		{"session-paid", "-id ID\ttoggle the paid flag", cli.sessionPaid},
		{"session-delete", "-id ID [-y]\tdelete a session", cli.sessionDelete},
		{"calendar", "[-month YYYY-MM]\ttutor month calendar", cli.showCalendar},
		{"students", "\tstudents assigned to the signed-in tutor", cli.students},
	}
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage: tutorctl COMMAND [flags]")
	fmt.Fprintln(cli.out)
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	for _, c := range cli.commands() {
		fmt.Fprintf(w, "  %s %s\n", c.name, c.usage)
	}
	_ = w.Flush()
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	var cmd *command
	for _, c := range cli.commands() {
		if c.name == args[1] {
			cmd = &c
			break
		}
	}
	if cmd == nil {
		cli.printUsage()
		return errHelp
	}

	cli.resume(ctx)
	err := cmd.run(ctx, args[2:])
	if serr := cli.store.Save(cli.gw.Session()); serr != nil {
		cli.log.Warn("session not saved", zap.String("path", cli.store.path), zap.Error(serr))
	}
	return err
}

// resume restores the stored session and refreshes it when the access
// token has expired. A rejected refresh signs the client out.
func (cli *commandLine) resume(ctx context.Context) {
	sess, err := cli.store.Load()
	if err != nil {
		cli.log.Warn("ignoring stored session", zap.Error(err))
		return
	}
	if sess == nil {
		return
	}
	cli.gw.Restore(sess)
	if !sess.Expired(cli.now()) {
		return
	}
	if _, err := cli.gw.Refresh(ctx); err != nil {
		if gateway.StatusOf(err) == http.StatusUnauthorized {
			cli.gw.Restore(nil)
			return
		}
		cli.log.Warn("session refresh failed", zap.Error(err))
	}
}

// ── Flags ───────────────────────────────────────────────────────────

func (cli *commandLine) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// parse parses args and checks that every name in required is non-empty.
func parse(fs *flag.FlagSet, args []string, required ...string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return err
	}
	for _, name := range required {
		if f := fs.Lookup(name); f == nil || f.Value.String() == "" {
			fmt.Fprintf(fs.Output(), "missing -%s\n", name)
			fs.Usage()
			return errHelp
		}
	}
	return nil
}

// assumeYes adds -y, which answers every confirmation with yes.
func (cli *commandLine) assumeYes(fs *flag.FlagSet) {
	fs.BoolVar(&cli.term.yes, "y", false, "do not ask for confirmation")
}

func (cli *commandLine) readPassword(label string) (string, error) {
	fmt.Fprint(cli.out, label)
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

// newPassword prompts for a password and its confirmation.
func (cli *commandLine) newPassword() (string, string, error) {
	pwd, err := cli.readPassword("Nouveau mot de passe: ")
	if err != nil {
		return "", "", err
	}
	again, err := cli.readPassword("Confirmer le mot de passe: ")
	if err != nil {
		return "", "", err
	}
	return pwd, again, nil
}

// ── Session helpers ─────────────────────────────────────────────────

func (cli *commandLine) signedIn() (gateway.User, error) {
	s := cli.gw.Session()
	if s == nil {
		return gateway.User{}, fmt.Errorf("%w: run tutorctl login", workflow.ErrNotSignedIn)
	}
	return s.User, nil
}

func (cli *commandLine) admin() (*workflow.Admin, error) {
	u, err := cli.signedIn()
	if err != nil {
		return nil, err
	}
	if u.Role != model.RoleAdmin {
		return nil, errors.New("this command needs an administrator account")
	}
	return workflow.NewAdmin(cli.gw, cli.term, u), nil
}

func (cli *commandLine) tutorBoard(ctx context.Context) (*workflow.TutorBoard, error) {
	u, err := cli.signedIn()
	if err != nil {
		return nil, err
	}
	if u.Role != model.RoleTutor {
		return nil, errors.New("this command needs a tutor account")
	}
	t := workflow.NewTutorBoard(cli.gw, cli.term, u, cli.now())
	if err := t.Load(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (cli *commandLine) table() *tabwriter.Writer {
	return tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
}

// ── Self service ────────────────────────────────────────────────────

func (cli *commandLine) self() *workflow.SelfService {
	return workflow.NewSelfService(cli.gw)
}

func (cli *commandLine) login(ctx context.Context, args []string) error {
	fs := cli.flags("login")
	email := fs.String("email", "", "account email")
	if err := parse(fs, args, "email"); err != nil {
		return err
	}
	pwd, err := cli.readPassword("Mot de passe: ")
	if err != nil {
		return err
	}
	route, err := cli.self().Login(ctx, *email, pwd)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Connecté: %s\n", *email)
	switch route {
	case workflow.RouteAdmin:
		fmt.Fprintln(cli.out, "Back office: tutorctl registrations, accounts, sessions")
	case workflow.RouteTutor:
		fmt.Fprintln(cli.out, "Espace tuteur: tutorctl calendar, students")
	default:
		fmt.Fprintln(cli.out, "Tableau de bord: tutorctl dashboard")
	}
	return nil
}

func (cli *commandLine) logout(ctx context.Context, args []string) error {
	if err := parse(cli.flags("logout"), args); err != nil {
		return err
	}
	if cli.gw.Session() == nil {
		return nil
	}
	// The local session is dropped even when the server call fails.
	if err := cli.gw.SignOut(ctx); err != nil {
		cli.log.Warn("sign out", zap.Error(err))
	}
	fmt.Fprintln(cli.out, "Déconnecté")
	return nil
}

func (cli *commandLine) signup(ctx context.Context, args []string) error {
	fs := cli.flags("signup")
	var f workflow.SignUpForm
	var service string
	fs.StringVar(&f.Email, "email", "", "account email")
	fs.StringVar(&f.ParentName, "parent", "", "parent name")
	fs.StringVar(&f.StudentName, "student", "", "student name")
	fs.StringVar(&f.Phone, "phone", "", "phone number")
	fs.StringVar(&service, "service", "", "en_ligne, primaire, secondaire or cegep")
	fs.StringVar(&f.Address, "address", "", "postal address")
	fs.StringVar(&f.MentalHealth, "mental-health", "", "accommodation notes")
	fs.StringVar(&f.Specifications, "specs", "", "anything else we should know")
	if err := parse(fs, args); err != nil {
		return err
	}
	f.Service = model.Service(service)

	var err error
	if f.Password, f.Confirm, err = cli.newPassword(); err != nil {
		return err
	}
	reg, err := cli.self().SignUp(ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Inscription reçue pour %s (%s)\n", reg.StudentName, reg.Status.Display().Label)
	return nil
}

func (cli *commandLine) resetPassword(ctx context.Context, args []string) error {
	fs := cli.flags("reset-password")
	email := fs.String("email", "", "account email")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := cli.self().RequestPasswordReset(ctx, *email); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Un lien de réinitialisation a été envoyé")
	return nil
}

func (cli *commandLine) recoverPassword(ctx context.Context, args []string) error {
	fs := cli.flags("recover")
	link := fs.String("link", "", "reset link from the email, or a recovery redirect URL")
	token := fs.String("token", "", "recovery token from the reset email")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *link == "" && *token == "" {
		fs.Usage()
		return errHelp
	}

	self := cli.self()
	if *link != "" {
		pwd, again, err := cli.newPassword()
		if err != nil {
			return err
		}
		if err := self.CompleteResetLink(ctx, *link, pwd, again); err != nil {
			return err
		}
	} else {
		if err := self.ExchangeRecoveryToken(ctx, *token); err != nil {
			return err
		}
		pwd, again, err := cli.newPassword()
		if err != nil {
			return err
		}
		if err := self.SetNewPassword(ctx, pwd, again); err != nil {
			return err
		}
	}
	fmt.Fprintln(cli.out, "Mot de passe mis à jour")
	return nil
}

func (cli *commandLine) passwd(ctx context.Context, args []string) error {
	if err := parse(cli.flags("passwd"), args); err != nil {
		return err
	}
	if _, err := cli.signedIn(); err != nil {
		return err
	}
	pwd, again, err := cli.newPassword()
	if err != nil {
		return err
	}
	if err := cli.self().SetNewPassword(ctx, pwd, again); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Mot de passe mis à jour")
	return nil
}

func (cli *commandLine) whoami(ctx context.Context, args []string) error {
	if err := parse(cli.flags("whoami"), args); err != nil {
		return err
	}
	u, err := cli.gw.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if u == nil {
		return workflow.ErrNotSignedIn
	}
	fmt.Fprintf(cli.out, "%s\t%s\t%s\n", u.Email, u.Role.Label(), u.ID)
	return nil
}

func (cli *commandLine) dashboard(ctx context.Context, args []string) error {
	if err := parse(cli.flags("dashboard"), args); err != nil {
		return err
	}
	d := workflow.NewStudentDashboard(cli.gw)
	route, err := d.Load(ctx)
	if err != nil {
		return err
	}
	if route != workflow.RouteDashboard {
		fmt.Fprintf(cli.out, "Ce compte utilise l'écran %s\n", route)
		return nil
	}
	renderDashboard(cli.out, d)
	return nil
}
