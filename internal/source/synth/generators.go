package synth

import (
	"fmt"
	"math/rand/v2"

	"github.com/leadforge/leadforge/internal/lead"
)

var (
	executiveTitles = []string{
		"CEO", "CTO", "CFO", "CMO", "COO",
		"VP of Sales", "VP of Marketing", "Director of Operations",
		"Head of Business Development", "Sales Manager", "Marketing Manager",
	}
	companySuffixes  = []string{"Solutions", "Group", "Partners", "Tech", "Innovations"}
	revenueRanges    = []string{"$1M-$5M", "$5M-$10M", "$10M-$50M", "$50M-$100M", "$100M-$500M"}
	employeeRanges   = []string{"1-10", "11-50", "51-200", "201-500", "501-1000", "1000+"}
	departmentKinds  = []string{"Department", "Agency", "Office", "Bureau", "Division", "Authority", "Commission"}
	associationKinds = []string{"Association", "Society", "Council", "Federation", "Institute", "Guild", "Consortium"}
	nonprofitKinds   = []string{"Foundation", "Charity", "Nonprofit", "Trust", "Fund", "Initiative", "Project"}
	institutionKinds = []string{
		"University", "College", "Community College", "Technical Institute",
		"Vocational School", "High School", "School District",
	}
)

func person(r *rand.Rand, i int) (first, last string) {
	return fmt.Sprintf("First%d", i+1), fmt.Sprintf("Last%d", i+1)
}

func sampleCompany(r *rand.Rand, industry string, i int) (name, domain string) {
	name = fmt.Sprintf("%s %s %d", title(industry), companySuffixes[i%len(companySuffixes)], i+1)
	return name, slug(name) + ".com"
}

// LinkedIn produces professional contact samples.
func LinkedIn(r *rand.Rand, industry, location string, i int) *lead.Record {
	first, last := person(r, i)
	company, domain := sampleCompany(r, industry, i)

	rec := lead.NewRecord()
	rec.Set("Name", first+" "+last)
	rec.Set("Title", pick(r, []string{"CEO", "CTO", "Director", "VP", "Manager", "Consultant"})+
		" of "+pick(r, []string{"Marketing", "Sales", "Operations", "Development", title(industry)}))
	rec.Set("Company", company)
	rec.Set("Email", fmt.Sprintf("%s.%s@%s", slug(first), slug(last), domain))
	rec.Set("Phone", phone(r))
	return rec
}

// HunterIO produces email-discovery samples with a confidence score.
func HunterIO(r *rand.Rand, industry, location string, i int) *lead.Record {
	first, last := person(r, i)
	company, domain := sampleCompany(r, industry, i)

	rec := lead.NewRecord()
	rec.Set("Name", first+" "+last)
	rec.Set("Company", company)
	rec.Set("Position", pick(r, executiveTitles))
	rec.Set("Email", fmt.Sprintf("%s.%s@%s", slug(first), slug(last), domain))
	rec.Set("Email Confidence", fmt.Sprintf("%d%%", 50+r.IntN(50)))
	rec.Set("Domain", domain)
	return rec
}

// Clearbit produces company-profile samples with a primary contact.
func Clearbit(r *rand.Rand, industry, location string, i int) *lead.Record {
	first, last := person(r, i)
	company, domain := sampleCompany(r, industry, i)

	rec := lead.NewRecord()
	rec.Set("Company", company)
	rec.Set("Domain", domain)
	rec.SetInt("Employees", 10+r.IntN(4991))
	rec.Set("Annual Revenue", fmt.Sprintf("$%dM", 1+r.IntN(500)))
	rec.SetInt("Year Founded", 1980+r.IntN(41))
	rec.Set("Contact Name", first+" "+last)
	rec.Set("Contact Position", pick(r, executiveTitles))
	rec.Set("Contact Email", fmt.Sprintf("%s.%s@%s", slug(first), slug(last), domain))
	return rec
}

// ApolloIO produces contact samples with a LinkedIn profile URL.
func ApolloIO(r *rand.Rand, industry, location string, i int) *lead.Record {
	first, last := person(r, i)
	company, _ := sampleCompany(r, industry, i)

	rec := lead.NewRecord()
	rec.Set("Name", first+" "+last)
	rec.Set("Title", pick(r, executiveTitles))
	rec.Set("Company", company)
	rec.Set("Email", fmt.Sprintf("%s%s@%s.com", slug(first[:1]), slug(last), slug(company)))
	rec.Set("Phone", phone(r))
	rec.Set("LinkedIn", fmt.Sprintf("https://www.linkedin.com/in/%s-%s-%d", slug(first), slug(last), 10000+r.IntN(90000)))
	rec.SetInt("Employees", 10+r.IntN(4991))
	return rec
}

// ZoomInfo produces contact samples with firmographic and intent fields.
func ZoomInfo(r *rand.Rand, industry, location string, i int) *lead.Record {
	first, last := person(r, i)
	company, domain := sampleCompany(r, industry, i)

	rec := lead.NewRecord()
	rec.Set("Name", first+" "+last)
	rec.Set("Title", pick(r, executiveTitles))
	rec.Set("Company", company)
	rec.Set("Email", fmt.Sprintf("%s.%s@%s", slug(first), slug(last), domain))
	rec.Set("Phone", phone(r))
	rec.Set("Revenue", pick(r, revenueRanges))
	rec.Set("Employees", pick(r, employeeRanges))
	rec.Set("Intent", pick(r, []string{"High", "Medium", "Low"}))
	return rec
}

// ChamberOfCommerce produces member-directory business samples.
func ChamberOfCommerce(r *rand.Rand, industry, location string, i int) *lead.Record {
	name := fmt.Sprintf("%s %s %d", title(industry),
		[]string{"Company", "Business", "Group", "Enterprise", "Solutions"}[i%5], i+1)

	rec := lead.NewRecord()
	rec.Set("Name", name)
	rec.Set("Address", fmt.Sprintf("%d Main St, %s", 100+r.IntN(9900), location))
	rec.Set("Phone", phone(r))
	rec.Set("Website", "https://www."+slug(name)+".com")
	rec.SetInt("Chamber Member Since", 2000+r.IntN(24))
	return rec
}

// Government produces public-sector organization samples.
func Government(r *rand.Rand, industry, location string, i int) *lead.Record {
	org := fmt.Sprintf("%s %s of %s", location, pick(r, departmentKinds), title(industry))
	contact := fmt.Sprintf("Official%d Surname%d", i+1, i+1)

	rec := lead.NewRecord()
	rec.Set("Organization", org)
	rec.Set("Type", "Government")
	rec.Set("Address", fmt.Sprintf("%d Government Center, %s", 100+r.IntN(900), location))
	rec.Set("Website", fmt.Sprintf("https://www.%s.gov/%s", slug(location), slug(industry)))
	rec.Set("Phone", phone(r))
	rec.Set("Contact Name", contact)
	rec.Set("Contact Title", "Director of "+title(industry))
	rec.Set("Contact Email", fmt.Sprintf("%s@%s.gov", slug(contact), slug(location)))
	return rec
}

// Association produces professional-association samples.
func Association(r *rand.Rand, industry, location string, i int) *lead.Record {
	kind := pick(r, associationKinds)
	org := fmt.Sprintf("%s %s of %s Professionals", location, kind, title(industry))

	rec := lead.NewRecord()
	rec.Set("Organization", org)
	rec.Set("Type", "Association")
	rec.Set("Address", fmt.Sprintf("%d Association Way, %s", 100+r.IntN(900), location))
	rec.Set("Website", fmt.Sprintf("https://www.%s%s.org", slug(industry), slug(kind)))
	rec.Set("Phone", phone(r))
	rec.Set("Contact Name", fmt.Sprintf("Dr. Assoc%d Surname%d", i+1, i+1))
	rec.Set("Contact Title", pick(r, []string{"Executive Director", "President", "Secretary General", "Chairperson"}))
	rec.Set("Contact Email", fmt.Sprintf("contact@%s%s.org", slug(industry), slug(kind)))
	rec.SetInt("Members", 100+r.IntN(9901))
	rec.SetInt("Founded", 1900+r.IntN(111))
	return rec
}

// CharityNavigator produces nonprofit samples with financial ratios.
func CharityNavigator(r *rand.Rand, industry, location string, i int) *lead.Record {
	org := fmt.Sprintf("%s %s of %s", title(industry), pick(r, nonprofitKinds), location)

	rec := lead.NewRecord()
	rec.Set("Organization", org)
	rec.Set("Type", "Nonprofit")
	rec.Set("Address", fmt.Sprintf("%d Charity Lane, %s", 100+r.IntN(900), location))
	rec.Set("Website", "https://www."+slug(org)+".org")
	rec.Set("Phone", phone(r))
	rec.Set("Contact Name", fmt.Sprintf("Nonprofit%d Director%d", i+1, i+1))
	rec.Set("Contact Email", "director@"+slug(org)+".org")
	rec.Set("Annual Budget", fmt.Sprintf("$%dK", 50+r.IntN(950)))
	rec.Set("Program Expenses", fmt.Sprintf("%d%%", 60+r.IntN(36)))
	rec.Set("Admin Expenses", fmt.Sprintf("%d%%", 5+r.IntN(26)))
	rec.Set("Rating", fmt.Sprintf("%d.%d Stars", 2+r.IntN(3), r.IntN(10)))
	return rec
}

// Guidestar produces nonprofit registry samples with executive contacts.
func Guidestar(r *rand.Rand, industry, location string, i int) *lead.Record {
	org := fmt.Sprintf("%s %s of %s", title(industry),
		[]string{"Foundation", "Initiative", "Alliance", "Association", "Society"}[i%5], location)

	rec := lead.NewRecord()
	rec.Set("Organization", org)
	rec.Set("Address", fmt.Sprintf("%d Nonprofit St, %s", 100+r.IntN(9900), location))
	rec.Set("Executive", fmt.Sprintf("Dr. Name%d Surname%d", i+1, i+1))
	rec.Set("Executive Title", "Executive Director")
	rec.Set("Annual Revenue", fmt.Sprintf("$%dK", 100+r.IntN(900)))
	rec.SetInt("Employees", 5+r.IntN(96))
	rec.SetInt("Year Founded", 1950+r.IntN(71))
	rec.Set("Tax ID", fmt.Sprintf("%d-%d", 10+r.IntN(90), 1000000+r.IntN(9000000)))
	return rec
}

// Educational produces education-directory samples with admin contacts.
func Educational(r *rand.Rand, industry, location string, i int) *lead.Record {
	org := fmt.Sprintf("%s %s of %s", location, pick(r, institutionKinds), title(industry))

	rec := lead.NewRecord()
	rec.Set("Organization", org)
	rec.Set("Type", "Educational")
	rec.Set("Address", fmt.Sprintf("%d Campus Dr, %s", 100+r.IntN(9900), location))
	rec.Set("Phone", phone(r))
	rec.Set("Website", "https://www."+slug(org)+".edu")
	rec.SetInt("Students", 500+r.IntN(19501))
	rec.SetInt("Faculty", 25+r.IntN(976))
	rec.Set("Admin Name", fmt.Sprintf("Dr. Admin%d Surname%d", i+1, i+1))
	rec.Set("Admin Title", pick(r, []string{"President", "Dean", "Director", "Department Chair", "Principal"}))
	rec.Set("Admin Email", fmt.Sprintf("admin%d@%s.edu", i+1, slug(org)))
	return rec
}

// Websearch produces business-listing samples standing in for model-found
// leads when the websearch source has no API key.
func Websearch(r *rand.Rand, industry, location string, i int) *lead.Record {
	name := fmt.Sprintf("%s %s %d", title(industry),
		[]string{"Collective", "Studio", "Works", "House", "Labs"}[i%5], i+1)

	rec := lead.NewRecord()
	rec.Set("Name", name)
	rec.Set("Address", fmt.Sprintf("%d Market St, %s", 100+r.IntN(900), location))
	rec.Set("Phone", phone(r))
	rec.Set("Website", "https://www."+slug(name)+".com")
	rec.Set("Email", "hello@"+slug(name)+".com")
	return rec
}
