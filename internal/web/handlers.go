package web

import (
	"fmt"
	"net/http"

	"github.com/JonMunkholm/survey/internal/core"
	"github.com/JonMunkholm/survey/internal/session"
	"github.com/JonMunkholm/survey/internal/views"
)

// homeSurveys is how many surveys the home page lists.
const homeSurveys = 5

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) error {
	page, err := s.service.ListSurveys(r.Context(), 1, homeSurveys)
	if err != nil {
		return err
	}
	signedIn := core.UserFromContext(r.Context()) != nil
	return s.render.Page(w, r, http.StatusOK, views.LayoutSite, "Home", views.HomePage(page.Items, signedIn))
}

func (s *Server) handleListSurveys(w http.ResponseWriter, r *http.Request) error {
	page, err := s.service.ListSurveys(r.Context(), pageParam(r), core.DefaultPerPage)
	if err != nil {
		return err
	}
	return s.render.Page(w, r, http.StatusOK, views.LayoutSite, "Surveys", views.SurveyListPage(page))
}

func (s *Server) handleCreateSurvey(w http.ResponseWriter, r *http.Request) error {
	return s.render.Page(w, r, http.StatusOK, views.LayoutSite, "New survey",
		views.CreateSurveyPage(views.SurveyForm{}, nil))
}

func (s *Server) handleStoreSurvey(w http.ResponseWriter, r *http.Request) error {
	if err := parseForm(w, r); err != nil {
		return err
	}
	form, in := parseSurveyForm(r)
	user := core.UserFromContext(r.Context())

	id, err := s.service.CreateSurvey(r.Context(), user.ID, in)
	if appErr, ok := core.AsAppError(err); ok && appErr.Kind == core.KindValidation {
		s.render.Flash(r.Context(), session.KeyFlashError, appErr.UserMessage())
		return s.render.Page(w, r, appErr.Status(), views.LayoutSite, "New survey",
			views.CreateSurveyPage(form, appErr.FieldErrors()))
	}
	if err != nil {
		return err
	}

	s.render.Flash(r.Context(), session.KeyFlashSuccess, "Survey created")
	return redirect(w, r, fmt.Sprintf("/surveys/view?id=%d", id))
}

func (s *Server) handleViewSurvey(w http.ResponseWriter, r *http.Request) error {
	id, err := idParam(r, "id", "Survey")
	if err != nil {
		return err
	}
	survey, err := s.service.GetSurvey(r.Context(), id)
	if err != nil {
		return err
	}
	return s.render.Page(w, r, http.StatusOK, views.LayoutSite, survey.Title,
		views.SurveyAnswerPage(survey, nil, nil))
}

func (s *Server) handleSubmitResponse(w http.ResponseWriter, r *http.Request) error {
	if err := parseForm(w, r); err != nil {
		return err
	}
	id, err := idParam(r, "survey_id", "Survey")
	if err != nil {
		return err
	}
	answers, raw := parseAnswers(r)

	_, err = s.service.SubmitResponse(r.Context(), id, core.UserFromContext(r.Context()), answers)
	if appErr, ok := core.AsAppError(err); ok && appErr.Kind == core.KindValidation {
		survey, gerr := s.service.GetSurvey(r.Context(), id)
		if gerr != nil {
			return gerr
		}
		s.render.Flash(r.Context(), session.KeyFlashError, appErr.UserMessage())
		return s.render.Page(w, r, appErr.Status(), views.LayoutSite, survey.Title,
			views.SurveyAnswerPage(survey, raw, appErr.FieldErrors()))
	}
	if err != nil {
		return err
	}

	s.render.Flash(r.Context(), session.KeyFlashSuccess, "Thank you, your answers were saved")
	return redirect(w, r, fmt.Sprintf("/surveys/results?id=%d", id))
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) error {
	id, err := idParam(r, "id", "Survey")
	if err != nil {
		return err
	}
	res, err := s.service.Results(r.Context(), id)
	if err != nil {
		return err
	}
	return s.render.Page(w, r, http.StatusOK, views.LayoutSite, "Results: "+res.Survey.Title,
		views.ResultsPage(res))
}

func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) error {
	stats, err := s.service.AdminStats(r.Context())
	if err != nil {
		return err
	}
	return s.render.Page(w, r, http.StatusOK, views.LayoutAdmin, "Dashboard", views.AdminDashboard(stats))
}
