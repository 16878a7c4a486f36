package movie

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type ListView struct {
	MovieID     int     `json:"movieId"`
	IMDbID      string  `json:"imdbId"`
	Title       string  `json:"title"`
	Genres      []Genre `json:"genres"`
	ReleaseDate string  `json:"releaseDate"`
	Budget      string  `json:"budget"`
}

type DetailView struct {
	MovieID             int                 `json:"movieId"`
	IMDbID              string              `json:"imdbId"`
	Title               string              `json:"title"`
	Description         string              `json:"description"`
	ReleaseDate         string              `json:"releaseDate"`
	Budget              string              `json:"budget"`
	Runtime             float64             `json:"runtime"`
	AverageRating       float64             `json:"averageRating"`
	Genres              []Genre             `json:"genres"`
	Language            string              `json:"language"`
	ProductionCompanies []ProductionCompany `json:"productionCompanies"`
}

// Presenter turns movie records into response views. Budgets are grouped
// according to the presenter's locale.
type Presenter struct {
	printer *message.Printer
}

func NewPresenter(tag language.Tag) *Presenter {
	return &Presenter{printer: message.NewPrinter(tag)}
}

// FormatBudget renders a budget as dollars, "$0" when unknown.
func (p *Presenter) FormatBudget(budget *int64) string {
	if budget == nil || *budget == 0 {
		return "$0"
	}
	return "$" + p.printer.Sprintf("%d", *budget)
}

func (p *Presenter) ListView(m Movie) ListView {
	return ListView{
		MovieID:     m.MovieID,
		IMDbID:      m.IMDbID,
		Title:       m.Title,
		Genres:      m.Genres,
		ReleaseDate: m.ReleaseDate,
		Budget:      p.FormatBudget(m.Budget),
	}
}

func (p *Presenter) DetailView(m Movie, averageRating float64) DetailView {
	v := DetailView{
		MovieID:             m.MovieID,
		IMDbID:              m.IMDbID,
		Title:               m.Title,
		Description:         m.Overview,
		ReleaseDate:         m.ReleaseDate,
		Budget:              p.FormatBudget(m.Budget),
		AverageRating:       averageRating,
		Genres:              m.Genres,
		Language:            m.Language,
		ProductionCompanies: m.ProductionCompanies,
	}
	if m.Runtime != nil {
		v.Runtime = *m.Runtime
	}
	if v.Genres == nil {
		v.Genres = []Genre{}
	}
	if v.ProductionCompanies == nil {
		v.ProductionCompanies = []ProductionCompany{}
	}
	return v
}
