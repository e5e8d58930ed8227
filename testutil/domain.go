package testutil

import (
	"time"

	"github.com/ediel-queiroz/jnosql/metadata"
)

// God is the simplest modeled type: one string identifier and two fields
type God struct {
	ID   string
	Name string
	Age  int64
}

// Address is an embedded type without an identifier
type Address struct {
	Country string
	City    string
}

// Person exercises embedded composition and scalar lists
type Person struct {
	ID       int64
	Name     string
	Age      int64
	Siblings []any
	Address  *Address
}

// Project heads an inheritance group discriminated by the "size" document
type Project struct {
	Name string
}

// SmallProject is a Project subtype with discriminator value "Small"
type SmallProject struct {
	Project
	Investor string
}

// LargeProject is a Project subtype with discriminator value "Large"
type LargeProject struct {
	Project
	Budget float64
}

// Notification heads a second inheritance group discriminated by "dtype"
type Notification struct {
	ID        int64
	Name      string
	CreatedOn time.Time
}

// SmsNotification carries discriminator value "SMS"
type SmsNotification struct {
	Notification
	Phone string
}

// EmailNotification carries discriminator value "Email"
type EmailNotification struct {
	Notification
	Email string
}

// SocialMediaNotification carries discriminator value "SocialMedia"
type SocialMediaNotification struct {
	Notification
	Nickname string
}

// Animal is the graph traversal fixture
type Animal struct {
	ID   int64
	Name string
}

// Book exercises generated identifiers
type Book struct {
	ID    string
	Title string
}

// NewRegistry returns a registry with every fixture type registered
func NewRegistry() *metadata.Registry {
	r := metadata.NewRegistry()

	r.MustRegister(metadata.NewBuilder("God", func() any { return &God{} }).
		ID(metadata.StringField("_id",
			func(g *God) string { return g.ID },
			func(g *God, v string) { g.ID = v })).
		Field(metadata.StringField("name",
			func(g *God) string { return g.Name },
			func(g *God, v string) { g.Name = v })).
		Field(metadata.IntField("age",
			func(g *God) int64 { return g.Age },
			func(g *God, v int64) { g.Age = v })).
		MustBuild())

	r.MustRegister(metadata.NewBuilder("Address", func() any { return &Address{} }).
		Field(metadata.StringField("country",
			func(a *Address) string { return a.Country },
			func(a *Address, v string) { a.Country = v })).
		Field(metadata.StringField("city",
			func(a *Address) string { return a.City },
			func(a *Address, v string) { a.City = v })).
		MustBuild())

	r.MustRegister(metadata.NewBuilder("Person", func() any { return &Person{} }).
		ID(metadata.IntField("_id",
			func(p *Person) int64 { return p.ID },
			func(p *Person, v int64) { p.ID = v })).
		Field(metadata.StringField("name",
			func(p *Person) string { return p.Name },
			func(p *Person, v string) { p.Name = v })).
		Field(metadata.IntField("age",
			func(p *Person) int64 { return p.Age },
			func(p *Person, v int64) { p.Age = v })).
		Field(metadata.ListField("sibling",
			func(p *Person) []any { return p.Siblings },
			func(p *Person, v []any) { p.Siblings = v })).
		Field(metadata.EmbeddedField("address", "Address",
			func(p *Person) *Address { return p.Address },
			func(p *Person, v *Address) { p.Address = v })).
		MustBuild())

	r.MustRegister(metadata.NewBuilder("Project", func() any { return &Project{} }).
		Inheritance("size", "Project").
		ID(metadata.StringField("_id",
			func(p *Project) string { return p.Name },
			func(p *Project, v string) { p.Name = v })).
		MustBuild())

	r.MustRegister(metadata.NewBuilder("SmallProject", func() any { return &SmallProject{} }).
		SubtypeOf("Project", "Small").
		ID(metadata.StringField("_id",
			func(p *SmallProject) string { return p.Name },
			func(p *SmallProject, v string) { p.Name = v })).
		Field(metadata.StringField("investor",
			func(p *SmallProject) string { return p.Investor },
			func(p *SmallProject, v string) { p.Investor = v })).
		MustBuild())

	r.MustRegister(metadata.NewBuilder("LargeProject", func() any { return &LargeProject{} }).
		SubtypeOf("Project", "Large").
		ID(metadata.StringField("_id",
			func(p *LargeProject) string { return p.Name },
			func(p *LargeProject, v string) { p.Name = v })).
		Field(metadata.FloatField("budget",
			func(p *LargeProject) float64 { return p.Budget },
			func(p *LargeProject, v float64) { p.Budget = v })).
		MustBuild())

	r.MustRegister(metadata.NewBuilder("Notification", func() any { return &Notification{} }).
		Inheritance("dtype", "Notification").
		ID(metadata.IntField("_id",
			func(n *Notification) int64 { return n.ID },
			func(n *Notification, v int64) { n.ID = v })).
		Field(metadata.StringField("name",
			func(n *Notification) string { return n.Name },
			func(n *Notification, v string) { n.Name = v })).
		Field(metadata.TimeField("createdOn",
			func(n *Notification) time.Time { return n.CreatedOn },
			func(n *Notification, v time.Time) { n.CreatedOn = v })).
		MustBuild())

	r.MustRegister(metadata.NewBuilder("SmsNotification", func() any { return &SmsNotification{} }).
		SubtypeOf("Notification", "SMS").
		ID(metadata.IntField("_id",
			func(n *SmsNotification) int64 { return n.ID },
			func(n *SmsNotification, v int64) { n.ID = v })).
		Field(metadata.StringField("name",
			func(n *SmsNotification) string { return n.Name },
			func(n *SmsNotification, v string) { n.Name = v })).
		Field(metadata.TimeField("createdOn",
			func(n *SmsNotification) time.Time { return n.CreatedOn },
			func(n *SmsNotification, v time.Time) { n.CreatedOn = v })).
		Field(metadata.StringField("phone",
			func(n *SmsNotification) string { return n.Phone },
			func(n *SmsNotification, v string) { n.Phone = v })).
		MustBuild())

	r.MustRegister(metadata.NewBuilder("EmailNotification", func() any { return &EmailNotification{} }).
		SubtypeOf("Notification", "Email").
		ID(metadata.IntField("_id",
			func(n *EmailNotification) int64 { return n.ID },
			func(n *EmailNotification, v int64) { n.ID = v })).
		Field(metadata.StringField("name",
			func(n *EmailNotification) string { return n.Name },
			func(n *EmailNotification, v string) { n.Name = v })).
		Field(metadata.TimeField("createdOn",
			func(n *EmailNotification) time.Time { return n.CreatedOn },
			func(n *EmailNotification, v time.Time) { n.CreatedOn = v })).
		Field(metadata.StringField("email",
			func(n *EmailNotification) string { return n.Email },
			func(n *EmailNotification, v string) { n.Email = v })).
		MustBuild())

	r.MustRegister(metadata.NewBuilder("SocialMediaNotification", func() any { return &SocialMediaNotification{} }).
		SubtypeOf("Notification", "SocialMedia").
		ID(metadata.IntField("_id",
			func(n *SocialMediaNotification) int64 { return n.ID },
			func(n *SocialMediaNotification, v int64) { n.ID = v })).
		Field(metadata.StringField("name",
			func(n *SocialMediaNotification) string { return n.Name },
			func(n *SocialMediaNotification, v string) { n.Name = v })).
		Field(metadata.TimeField("createdOn",
			func(n *SocialMediaNotification) time.Time { return n.CreatedOn },
			func(n *SocialMediaNotification, v time.Time) { n.CreatedOn = v })).
		Field(metadata.StringField("nickname",
			func(n *SocialMediaNotification) string { return n.Nickname },
			func(n *SocialMediaNotification, v string) { n.Nickname = v })).
		MustBuild())

	r.MustRegister(metadata.NewBuilder("Animal", func() any { return &Animal{} }).
		ID(metadata.IntField("_id",
			func(a *Animal) int64 { return a.ID },
			func(a *Animal, v int64) { a.ID = v })).
		Field(metadata.StringField("name",
			func(a *Animal) string { return a.Name },
			func(a *Animal, v string) { a.Name = v })).
		MustBuild())

	r.MustRegister(metadata.NewBuilder("Book", func() any { return &Book{} }).
		GeneratedID(metadata.StringField("_id",
			func(b *Book) string { return b.ID },
			func(b *Book, v string) { b.ID = v })).
		Field(metadata.StringField("title",
			func(b *Book) string { return b.Title },
			func(b *Book, v string) { b.Title = v })).
		MustBuild())

	return r
}
