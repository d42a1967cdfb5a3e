// Command writeaudit reports which service methods write the payment,
// enrollment and certificate tables. Those writes must go through an
// aggregate; a direct repo write is printed as a residual and fails the run.
package main

import (
	"encoding/json"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type repoField struct {
	Name     string `json:"name"`
	RepoType string `json:"repo_type"`
	Guarded  bool   `json:"guarded"`
}

type methodStats struct {
	StructName       string   `json:"struct_name"`
	Method           string   `json:"method"`
	File             string   `json:"file"`
	Line             int      `json:"line"`
	RepoWriteCalls   int      `json:"repo_write_calls"`
	RepoWrites       []string `json:"repo_writes,omitempty"`
	AggregateCalls   int      `json:"aggregate_calls"`
	AggregateMethods []string `json:"aggregate_methods,omitempty"`
}

type auditReport struct {
	GuardedRepoWriteCallsites int           `json:"guarded_repo_write_callsites"`
	AggregateWriteCallsites   int           `json:"aggregate_write_callsites"`
	GuardedRepoFields         []repoField   `json:"guarded_repo_fields"`
	Residual                  []methodStats `json:"residual"`
	Methods                   []methodStats `json:"methods"`
}

// Repos whose rows carry ledger or enrollment invariants.
var guardedRepos = map[string]bool{
	"TransactionRepo":          true,
	"EnrollmentRepo":           true,
	"EnrollmentQuizResultRepo": true,
	"CertificateRepo":          true,
}

var repoWriteMethods = map[string]bool{
	"Create":              true,
	"InsertIfAbsent":      true,
	"Upsert":              true,
	"UpdateFields":        true,
	"Delete":              true,
	"LockByLearnerCourse": true,
}

var aggregateWriteMethods = map[string]bool{
	"RecordIfAbsent":   true,
	"Join":             true,
	"GrantFromPayment": true,
	"CompleteLesson":   true,
	"RecordQuizResult": true,
	"Claim":            true,
}

// fieldType is "repos.X", "domainagg.X" or a bare local struct name.
type structIndex map[string]map[string]string

func main() {
	root := "."
	if len(os.Args) > 1 {
		root = os.Args[1]
	}
	report, err := audit(root)
	if err != nil {
		exitf("%v", err)
	}
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		exitf("marshal report: %v", err)
	}
	fmt.Println(string(out))
	if report.GuardedRepoWriteCallsites > 0 {
		os.Exit(2)
	}
}

func audit(root string) (auditReport, error) {
	servicesDir := filepath.Join(root, "internal", "services")
	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, servicesDir, func(fi os.FileInfo) bool {
		name := fi.Name()
		return strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go")
	}, 0)
	if err != nil {
		return auditReport{}, fmt.Errorf("parse dir: %w", err)
	}
	pkg, ok := pkgs["services"]
	if !ok {
		return auditReport{}, fmt.Errorf("services package not found in %s", servicesDir)
	}

	idx := structIndex{}
	for _, f := range pkg.Files {
		collectStructs(f, idx)
	}
	var methods []methodStats
	for filePath, f := range pkg.Files {
		rel, err := filepath.Rel(root, filePath)
		if err != nil {
			rel = filePath
		}
		collectMethodStats(fset, f, rel, idx, &methods)
	}
	return buildReport(idx, methods), nil
}

func collectStructs(file *ast.File, out structIndex) {
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok || st.Fields == nil {
				continue
			}
			fields := map[string]string{}
			for _, field := range st.Fields.List {
				typ := typeName(field.Type)
				if typ == "" {
					continue
				}
				for _, n := range field.Names {
					fields[n.Name] = typ
				}
			}
			out[ts.Name.Name] = fields
		}
	}
}

func typeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return typeName(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.SelectorExpr:
		if id, ok := t.X.(*ast.Ident); ok {
			return id.Name + "." + t.Sel.Name
		}
	}
	return ""
}

// resolve walks recv.a.b... through the struct index and returns the type of
// the last field.
func (idx structIndex) resolve(recvType string, path []string) string {
	cur := recvType
	for _, p := range path {
		fields, ok := idx[cur]
		if !ok {
			return ""
		}
		cur, ok = fields[p]
		if !ok {
			return ""
		}
	}
	return cur
}

// selectorPath flattens s.deps.Ledger into ("s", ["deps", "Ledger"]).
func selectorPath(expr ast.Expr) (string, []string) {
	var path []string
	for {
		switch e := expr.(type) {
		case *ast.SelectorExpr:
			path = append([]string{e.Sel.Name}, path...)
			expr = e.X
		case *ast.Ident:
			return e.Name, path
		default:
			return "", nil
		}
	}
}

func collectMethodStats(fset *token.FileSet, file *ast.File, relFile string, idx structIndex, out *[]methodStats) {
	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Recv == nil || fd.Body == nil || len(fd.Recv.List) == 0 {
			continue
		}
		recvName, recvType := recvInfo(fd.Recv.List[0])
		if recvType == "" || recvName == "" {
			continue
		}
		if _, ok := idx[recvType]; !ok {
			continue
		}

		m := methodStats{
			StructName: recvType,
			Method:     fd.Name.Name,
			File:       filepath.ToSlash(relFile),
			Line:       fset.Position(fd.Pos()).Line,
		}
		repoWrites := map[string]bool{}
		aggMethods := map[string]bool{}

		ast.Inspect(fd.Body, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			fnSel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			base, path := selectorPath(fnSel.X)
			if base != recvName || len(path) == 0 {
				return true
			}
			typ := idx.resolve(recvType, path)
			method := fnSel.Sel.Name
			switch {
			case strings.HasPrefix(typ, "repos.") && guardedRepos[strings.TrimPrefix(typ, "repos.")] && repoWriteMethods[method]:
				m.RepoWriteCalls++
				repoWrites[strings.Join(path, ".")+"."+method] = true
			case strings.HasPrefix(typ, "domainagg.") && strings.HasSuffix(typ, "Aggregate") && aggregateWriteMethods[method]:
				m.AggregateCalls++
				aggMethods[method] = true
			}
			return true
		})
		m.RepoWrites = sortedKeys(repoWrites)
		m.AggregateMethods = sortedKeys(aggMethods)
		*out = append(*out, m)
	}
}

func buildReport(idx structIndex, methods []methodStats) auditReport {
	sort.Slice(methods, func(i, j int) bool {
		if methods[i].File == methods[j].File {
			return methods[i].Line < methods[j].Line
		}
		return methods[i].File < methods[j].File
	})

	report := auditReport{Methods: methods}
	for _, m := range methods {
		report.GuardedRepoWriteCallsites += m.RepoWriteCalls
		report.AggregateWriteCallsites += m.AggregateCalls
		if m.RepoWriteCalls > 0 {
			report.Residual = append(report.Residual, m)
		}
	}

	names := make([]string, 0, len(idx))
	for name := range idx {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, structName := range names {
		fieldNames := make([]string, 0, len(idx[structName]))
		for f := range idx[structName] {
			fieldNames = append(fieldNames, f)
		}
		sort.Strings(fieldNames)
		for _, f := range fieldNames {
			typ := idx[structName][f]
			if !strings.HasPrefix(typ, "repos.") {
				continue
			}
			rt := strings.TrimPrefix(typ, "repos.")
			if guardedRepos[rt] {
				report.GuardedRepoFields = append(report.GuardedRepoFields, repoField{
					Name:     structName + "." + f,
					RepoType: rt,
					Guarded:  true,
				})
			}
		}
	}
	return report
}

func recvInfo(field *ast.Field) (string, string) {
	if field == nil || len(field.Names) == 0 {
		return "", ""
	}
	recvName := field.Names[0].Name
	switch t := field.Type.(type) {
	case *ast.StarExpr:
		if id, ok := t.X.(*ast.Ident); ok {
			return recvName, id.Name
		}
	case *ast.Ident:
		return recvName, t.Name
	}
	return "", ""
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
