package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KaramelBytes/agridash/internal/analysis"
	"github.com/KaramelBytes/agridash/internal/dataset"
	"github.com/KaramelBytes/agridash/internal/render"
)

var templateFuncs = template.FuncMap{
	"num": analysis.FormatValue,
}

type menuItem struct {
	Slug   string
	Label  string
	Active bool
}

type chartView struct {
	ID    string
	Title string
	URL   string
}

type pageData struct {
	Lang    string
	Heading string
	Menu    []menuItem
	Result  *analysis.Result
	Charts  []chartView
	Error   string
	LoadID  string
	Sources []string
}

// options returns analyzer options with the locale from ?lang= applied.
func (s *Server) options(c *gin.Context) analysis.Options {
	opt := s.opt.Analysis
	switch c.Query("lang") {
	case "ko", "en":
		opt.Locale = c.Query("lang")
	}
	return opt
}

func tr(locale, en, ko string) string {
	if locale == "ko" {
		return ko
	}
	return en
}

func (s *Server) heading(locale string, ds *dataset.Dataset) string {
	from, to := s.opt.StartYear, s.opt.EndYear
	if ds != nil && ds.Len() > 0 {
		years := ds.Years()
		from, to = years[0], years[len(years)-1]
	}
	return fmt.Sprintf(tr(locale, "Gangneung Agriculture Data Analysis (%d-%d)", "강릉시 농업 데이터 분석 (%d-%d)"), from, to)
}

func (s *Server) menu(locale string, active analysis.Selection) []menuItem {
	var out []menuItem
	for _, sel := range analysis.Selections() {
		out = append(out, menuItem{Slug: sel.Slug(), Label: sel.Label(locale), Active: sel == active})
	}
	return out
}

func loadFailedMessage(locale string, err error) string {
	return tr(locale, "Failed to load the data: ", "데이터를 불러오지 못했습니다: ") + err.Error()
}

func (s *Server) index(c *gin.Context) {
	target := "/" + analysis.Overview.Slug()
	if q := c.Request.URL.RawQuery; q != "" {
		target += "?" + q
	}
	c.Redirect(http.StatusFound, target)
}

func (s *Server) health(c *gin.Context) {
	ds, err := s.src.Get()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "load_id": ds.LoadID(), "years": ds.Len(), "columns": len(ds.Keys())})
}

func (s *Server) page(c *gin.Context) {
	opt := s.options(c)
	data := pageData{Lang: opt.Locale}
	sel, selErr := analysis.ParseSelection(c.Param("selection"))
	active := sel
	if selErr != nil {
		active = -1
	}
	data.Menu = s.menu(opt.Locale, active)

	ds, err := s.src.Get()
	data.Heading = s.heading(opt.Locale, ds)
	if err != nil {
		data.Error = loadFailedMessage(opt.Locale, err)
		c.HTML(http.StatusServiceUnavailable, "page.html", data)
		return
	}
	data.LoadID, data.Sources = ds.LoadID(), ds.Sources()
	if selErr != nil {
		data.Error = tr(opt.Locale, "Unknown menu option: ", "알 수 없는 메뉴입니다: ") + c.Param("selection")
		c.HTML(http.StatusNotFound, "page.html", data)
		return
	}

	res, err := analysis.Run(sel, ds, opt)
	if err != nil {
		_ = c.Error(err)
		data.Error = tr(opt.Locale, "Analysis failed: ", "분석에 실패했습니다: ") + err.Error()
		c.HTML(http.StatusInternalServerError, "page.html", data)
		return
	}
	data.Result = &res
	for _, ch := range res.Charts {
		url := fmt.Sprintf("/charts/%s/%s?lang=%s", sel.Slug(), ch.ID, opt.Locale)
		data.Charts = append(data.Charts, chartView{ID: ch.ID, Title: ch.Title, URL: url})
	}
	c.HTML(http.StatusOK, "page.html", data)
}

func (s *Server) chartImage(c *gin.Context) {
	opt := s.options(c)
	format, err := render.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, createErrorResponse(CodeBadRequest, err.Error()))
		return
	}
	sel, err := analysis.ParseSelection(c.Param("selection"))
	if err != nil {
		c.JSON(http.StatusNotFound, createErrorResponse(CodeUnknownSelection, err.Error()))
		return
	}
	ds, err := s.src.Get()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, createErrorResponse(CodeDataUnavailable, loadFailedMessage(opt.Locale, err)))
		return
	}
	res, err := analysis.Run(sel, ds, opt)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, createErrorResponse(CodeAnalysisFailed, err.Error()))
		return
	}
	spec, ok := res.Chart(c.Param("chart"))
	if !ok {
		c.JSON(http.StatusNotFound, createErrorResponse(CodeUnknownChart, fmt.Sprintf("unknown chart %q for %s", c.Param("chart"), sel.Slug())))
		return
	}
	var buf bytes.Buffer
	if err := render.Chart(&buf, spec, format, s.opt.Image); err != nil {
		_ = c.Error(err)
		status := http.StatusInternalServerError
		if errors.Is(err, render.ErrEmptyChart) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, createErrorResponse(CodeRenderFailed, err.Error()))
		return
	}
	c.Header("Cache-Control", "public, max-age=300")
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

type selectionView struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

func (s *Server) listSelections(c *gin.Context) {
	opt := s.options(c)
	var out []selectionView
	for _, sel := range analysis.Selections() {
		out = append(out, selectionView{Slug: sel.Slug(), Label: sel.Label(opt.Locale), URL: "/api/v1/analyses/" + sel.Slug()})
	}
	c.JSON(http.StatusOK, createSuccessResponse(out, c.GetString(ctxRequestID), ""))
}

func (s *Server) getAnalysis(c *gin.Context) {
	opt := s.options(c)
	sel, err := analysis.ParseSelection(c.Param("selection"))
	if err != nil {
		c.JSON(http.StatusNotFound, createErrorResponse(CodeUnknownSelection, err.Error()))
		return
	}
	ds, err := s.src.Get()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, createErrorResponse(CodeDataUnavailable, loadFailedMessage(opt.Locale, err)))
		return
	}
	res, err := analysis.Run(sel, ds, opt)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, createErrorResponse(CodeAnalysisFailed, err.Error()))
		return
	}
	c.JSON(http.StatusOK, createSuccessResponse(res, c.GetString(ctxRequestID), ds.LoadID()))
}
