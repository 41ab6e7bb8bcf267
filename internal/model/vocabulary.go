package model // package model holds the domain records and their shared vocabulary

// Role is the account role stored in profiles.role.
type Role string

const (
	RoleUser  Role = "user"  // student or parent account
	RoleTutor Role = "tutor" // tutor account
	RoleAdmin Role = "admin" // back-office administrator
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleTutor, RoleAdmin:
		return true
	}
	return false
}

// RegistrationStatus is the approval status of a registration.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "en_attente"
	RegistrationApproved RegistrationStatus = "approuve"
	RegistrationRefused  RegistrationStatus = "refuse"
)

func (s RegistrationStatus) Valid() bool {
	_, ok := registrationStatusInfo[s]
	return ok
}

// ContactStatus tracks outreach progress on a registration. It is
// independent of the approval status.
type ContactStatus string

const (
	ContactNotContacted ContactStatus = "non_contacte"
	ContactContacted    ContactStatus = "contacte"
	ContactDiscussing   ContactStatus = "en_discussion"
	ContactFinalized    ContactStatus = "finalise"
)

func (s ContactStatus) Valid() bool {
	_, ok := contactStatusInfo[s]
	return ok
}

// SessionStatus is the lifecycle state of a tutoring session.
type SessionStatus string

const (
	SessionScheduled   SessionStatus = "scheduled"
	SessionCompleted   SessionStatus = "completed"
	SessionInvoiceSent SessionStatus = "facture_envoyee"
	SessionReceiptSent SessionStatus = "recu_envoye"
	SessionCancelled   SessionStatus = "cancelled"
)

func (s SessionStatus) Valid() bool {
	_, ok := sessionStatusInfo[s]
	return ok
}

// TutorSettable reports whether a tutor may move a session into s.
// Invoice and receipt states are reserved to the back office.
func (s SessionStatus) TutorSettable() bool {
	return s == SessionScheduled || s == SessionCompleted || s == SessionCancelled
}

// Service is the requested tutoring tier of a registration.
type Service string

const (
	ServiceOnline      Service = "en_ligne"
	ServicePrimary     Service = "primaire"
	ServiceSecondary   Service = "secondaire"
	ServiceCegep       Service = "cegep"
	serviceOnlineAlias Service = "online" // legacy value found in older rows
)

func (s Service) Valid() bool {
	_, ok := serviceInfo[s]
	return ok && s != serviceOnlineAlias
}

// Display is a label/color pair used when rendering a code.
type Display struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Tier describes a service tier and its hourly rate in Canadian dollars.
type Tier struct {
	Code        Service `json:"code"`
	Label       string  `json:"label"`
	HourlyPrice int     `json:"hourly_price"`
}

// FallbackColor is used for codes missing from the tables.
const FallbackColor = "#6b7280"

var registrationStatusInfo = map[RegistrationStatus]Display{
	RegistrationPending:  {"En attente", "#eab308"},
	RegistrationApproved: {"Approuvé", "#22c55e"},
	RegistrationRefused:  {"Refusé", "#ef4444"},
}

var contactStatusInfo = map[ContactStatus]Display{
	ContactNotContacted: {"Non contacté", "#ef4444"},
	ContactContacted:    {"Contacté", "#f97316"},
	ContactDiscussing:   {"En discussion", "#eab308"},
	ContactFinalized:    {"Finalisé", "#22c55e"},
}

var sessionStatusInfo = map[SessionStatus]Display{
	SessionScheduled:   {"Planifiée", "#3b82f6"},
	SessionCompleted:   {"Complétée", "#22c55e"},
	SessionInvoiceSent: {"Facture envoyée", "#f59e0b"},
	SessionReceiptSent: {"Reçu envoyé", "#8b5cf6"},
	SessionCancelled:   {"Annulée", "#ef4444"},
}

var serviceInfo = map[Service]Tier{
	ServiceOnline:      {ServiceOnline, "En Ligne", 30},
	ServicePrimary:     {ServicePrimary, "Primaire", 35},
	ServiceSecondary:   {ServiceSecondary, "Secondaire", 38},
	ServiceCegep:       {ServiceCegep, "Cégep", 40},
	serviceOnlineAlias: {ServiceOnline, "En Ligne", 30},
}

var roleLabels = map[Role]string{
	RoleUser:  "Élève",
	RoleTutor: "Tuteur",
	RoleAdmin: "Administrateur",
}

// Ordered code lists, in the order the back office presents them.
var (
	RegistrationStatuses = []RegistrationStatus{RegistrationPending, RegistrationApproved, RegistrationRefused}
	ContactStatuses      = []ContactStatus{ContactNotContacted, ContactContacted, ContactDiscussing, ContactFinalized}
	SessionStatuses      = []SessionStatus{SessionScheduled, SessionCompleted, SessionInvoiceSent, SessionReceiptSent, SessionCancelled}
	Services             = []Service{ServiceOnline, ServicePrimary, ServiceSecondary, ServiceCegep}
	Roles                = []Role{RoleUser, RoleTutor, RoleAdmin}
)

func (s RegistrationStatus) Display() Display { return lookup(registrationStatusInfo, s) }
func (s ContactStatus) Display() Display      { return lookup(contactStatusInfo, s) }
func (s SessionStatus) Display() Display      { return lookup(sessionStatusInfo, s) }

// Tier returns the tier for s. Unknown codes keep their raw value as label
// and a zero price.
func (s Service) Tier() Tier {
	if t, ok := serviceInfo[s]; ok {
		return t
	}
	return Tier{Code: s, Label: string(s)}
}

func (s Service) Label() string { return s.Tier().Label }

func (r Role) Label() string {
	if l, ok := roleLabels[r]; ok {
		return l
	}
	return string(r)
}

func lookup[K ~string](m map[K]Display, k K) Display {
	if d, ok := m[k]; ok {
		return d
	}
	return Display{Label: string(k), Color: FallbackColor}
}

// VocabularyEntry is one code with its display attributes.
type VocabularyEntry struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Color string `json:"color,omitempty"`
}

// Vocabulary is the full set of lookup tables served to clients.
type Vocabulary struct {
	Roles                []VocabularyEntry `json:"roles"`
	RegistrationStatuses []VocabularyEntry `json:"registration_statuses"`
	ContactStatuses      []VocabularyEntry `json:"contact_statuses"`
	SessionStatuses      []VocabularyEntry `json:"session_statuses"`
	Services             []Tier            `json:"services"`
}

// BuildVocabulary assembles the lookup tables in presentation order.
func BuildVocabulary() Vocabulary {
	var v Vocabulary
	for _, r := range Roles {
		v.Roles = append(v.Roles, VocabularyEntry{Code: string(r), Label: r.Label()})
	}
	for _, s := range RegistrationStatuses {
		d := s.Display()
		v.RegistrationStatuses = append(v.RegistrationStatuses, VocabularyEntry{string(s), d.Label, d.Color})
	}
	for _, s := range ContactStatuses {
		d := s.Display()
		v.ContactStatuses = append(v.ContactStatuses, VocabularyEntry{string(s), d.Label, d.Color})
	}
	for _, s := range SessionStatuses {
		d := s.Display()
		v.SessionStatuses = append(v.SessionStatuses, VocabularyEntry{string(s), d.Label, d.Color})
	}
	for _, s := range Services {
		v.Services = append(v.Services, s.Tier())
	}
	return v
}
