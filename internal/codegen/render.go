package codegen

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// emitter renders the dialect specific parts of a program.
type emitter interface {
	dialect() Dialect
	includes() []string
	// globals, onInit and onDeinit receive the indicator series whose node
	// needs a handle.
	globals(handles []*series) []string
	onInit(handles []*series) []string
	onDeinit(handles []*series) []string
	// load renders the statements filling an indicator series.
	load(s *series) []string
	orderType(action string) string
	functions() []string
	// manageStops is the ManageStops function, emitted when an order
	// trails its stop or moves it to break-even.
	manageStops() string
}

type sourceData struct {
	Dialect     Dialect
	FileName    string
	Name        string
	Description string
	StrategyID  string
	Magic       int
	Strict      bool
	ActionCount int
	Includes    []string
	Inputs      []input
	Globals     []string
	Init        []string
	Deinit      []string
	Loads       []string
	Manage      []string
	Booleans    []binding
	Orders      []string
	Functions   []string
}

var sourceTemplate = template.Must(template.New("source").Funcs(template.FuncMap{
	"quote": quote,
}).Parse(`//+------------------------------------------------------------------+
//| {{.FileName}}
//| Generated from strategy {{.StrategyID}}
//+------------------------------------------------------------------+
#property copyright {{quote .Name}}
#property version   "1.00"
#property description {{quote .Description}}
{{- if .Strict}}
#property strict
{{- end}}
{{range .Includes}}
#include <{{.}}>
{{- end}}

#define ACTION_COUNT {{.ActionCount}}

input int    MagicNumber = {{.Magic}};
input double DefaultLots = 0.1;
input int    Slippage    = 3;
{{- range .Inputs}}
input {{.Type}} {{.Name}} = {{.Value}}; // {{.Comment}}
{{- end}}

datetime LastBarTime = 0;
{{- range .Globals}}
{{.}}
{{- end}}

int OnInit()
{
{{- range .Init}}
   {{.}}
{{- end}}
   return(INIT_SUCCEEDED);
}

void OnDeinit(const int reason)
{
{{- range .Deinit}}
   {{.}}
{{- end}}
}

void OnTick()
{
   datetime barTime = iTime(_Symbol, PERIOD_CURRENT, 0);
   if(barTime == LastBarTime)
      return;
{{range .Loads}}
   {{.}}
{{- end}}
   LastBarTime = barTime;
{{- range .Manage}}
   {{.}}
{{- end}}
{{range .Booleans}}
   bool {{.Name}} = {{.Expr}}; // {{.Comment}}
{{- end}}
{{range .Orders}}
   {{.}}
{{- end}}
}
{{- range .Functions}}

{{.}}
{{- end}}
`))

// render writes p in the dialect of e.
func render(e emitter, p *program) (string, error) {
	var handles []*series

	for _, s := range p.Handles {
		if nodeLoaded(p, s.Node.ID) {
			handles = append(handles, s)
		}
	}

	data := sourceData{
		Dialect:     e.dialect(),
		FileName:    FileName(p.Name) + e.dialect().Extension(),
		Name:        p.Name,
		Description: p.Description,
		StrategyID:  p.StrategyID,
		Magic:       p.Magic,
		Strict:      e.dialect() == DialectMQL4,
		ActionCount: len(p.Entries),
		Includes:    e.includes(),
		Inputs:      p.Inputs,
		Globals:     e.globals(handles),
		Init:        e.onInit(handles),
		Deinit:      e.onDeinit(handles),
		Booleans:    p.Booleans,
	}

	if data.Description == "" {
		data.Description = p.Name
	}

	for _, s := range p.Series {
		if s.Depth == 0 {
			continue
		}

		if s.Kind == seriesIndicator {
			data.Loads = append(data.Loads, e.load(s)...)
		} else {
			data.Loads = append(data.Loads, loadShared(s)...)
		}
	}

	for _, o := range p.Closes {
		data.Orders = append(data.Orders,
			fmt.Sprintf("if(%s)", o.Name),
			"   CloseAll();",
		)
	}

	for _, o := range p.Entries {
		magic := fmt.Sprintf("MagicNumber + %d", o.Offset)
		if o.Stops != nil {
			data.Manage = append(data.Manage, fmt.Sprintf("ManageStops(%s, %s);", magic, strings.Join(o.Stops, ", ")))
		}

		data.Orders = append(data.Orders,
			fmt.Sprintf("if(%s && !HasPosition(%s))", o.Name, magic),
			fmt.Sprintf("   OpenPosition(%s, %s, %s, %s, %s, %s);",
				e.orderType(o.Type), o.Lots, o.StopLoss, o.TakeProfit, magic, quote(o.Label)),
		)
	}

	data.Functions = append(data.Functions, pipSizeSource)
	for _, name := range p.Helpers {
		data.Functions = append(data.Functions, helperSource[name])
	}

	data.Functions = append(data.Functions, e.functions()...)
	if len(data.Manage) > 0 {
		data.Functions = append(data.Functions, e.manageStops())
	}

	var buf bytes.Buffer
	if err := sourceTemplate.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func nodeLoaded(p *program, id string) bool {
	for _, s := range p.Series {
		if s.Kind == seriesIndicator && s.Node.ID == id && s.Depth > 0 {
			return true
		}
	}

	return false
}

// FileName keeps letters, digits, dashes and underscores of name.
func FileName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ' || r == '/' || r == '.':
			return '_'
		default:
			return -1
		}
	}, name)

	if name == "" {
		return "strategy"
	}

	return name
}
