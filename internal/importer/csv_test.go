package importer

import (
	"strings"
	"testing"
)

const goodHeader = "email,first_name,last_name,position,depot,role,source,status"

func TestParseHeaderCaseInsensitive(t *testing.T) {
	in := "EMAIL,First_Name,LAST_NAME,Position,Depot,ROLE\n" +
		"Ana@Corp.Test,Ana,Cruz,Driver,North,employee\n"
	rows, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("want 1 row, got %d", len(rows))
	}
	if rows[0].Email != "ana@corp.test" {
		t.Errorf("email not normalized: %q", rows[0].Email)
	}
	if rows[0].FirstName != "Ana" || rows[0].Depot != "North" {
		t.Errorf("fields misread: %+v", rows[0])
	}
}

func TestParseCRLFAndQuotedFields(t *testing.T) {
	in := goodHeader + "\r\n" +
		"ben@corp.test,Ben,\"Reyes, Jr.\",Dispatcher,South,hr,direct,active\r\n" +
		"\r\n" +
		"carla@corp.test,Carla,Lim,Clerk,North,employee,,\r\n"
	rows, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 rows (blank skipped), got %d", len(rows))
	}
	if rows[0].LastName != "Reyes, Jr." {
		t.Errorf("quoted field misread: %q", rows[0].LastName)
	}
	if rows[1].Line != 4 {
		t.Errorf("line numbering off: %d", rows[1].Line)
	}
}

func TestParseMissingRequiredColumn(t *testing.T) {
	in := "email,first_name,last_name,position,role\nx@y.z,A,B,C,employee\n"
	if _, err := Parse(strings.NewReader(in)); err == nil || !strings.Contains(err.Error(), "depot") {
		t.Errorf("want missing-column error naming depot, got %v", err)
	}
}

func TestValidateRejectsBadRows(t *testing.T) {
	rows := []Row{
		{Line: 2, Email: "not-an-email", FirstName: "A", LastName: "B", Position: "C", Depot: "D", Role: "employee"},
		{Line: 3, Email: "ok@corp.test", FirstName: "", LastName: "B", Position: "C", Depot: "D", Role: "employee"},
		{Line: 4, Email: "ok2@corp.test", FirstName: "A", LastName: "B", Position: "C", Depot: "D", Role: "wizard"},
		{Line: 5, Email: "ok3@corp.test", FirstName: "A", LastName: "B", Position: "C", Depot: "D", Role: "hr", Source: "lottery"},
		{Line: 6, Email: "ok4@corp.test", FirstName: "A", LastName: "B", Position: "C", Depot: "D", Role: "hr", Status: "retired"},
	}
	errs := Validate(rows)
	if len(errs) != 5 {
		t.Fatalf("want 5 errors, got %d: %v", len(errs), errs)
	}
}

func TestValidateAcceptsCleanRows(t *testing.T) {
	rows := []Row{
		{Line: 2, Email: "a@corp.test", FirstName: "A", LastName: "B", Position: "Driver", Depot: "North", Role: "employee", Source: "applicant", Status: "active"},
		{Line: 3, Email: "b@corp.test", FirstName: "C", LastName: "D", Position: "Clerk", Depot: "South", Role: "hrc"},
	}
	if errs := Validate(rows); len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestSummarizeErrorsCapsAtFive(t *testing.T) {
	var errs []RowError
	for i := 0; i < 8; i++ {
		errs = append(errs, RowError{Line: i + 2, Field: "email", Reason: "is required"})
	}
	msg := SummarizeErrors(errs)
	if !strings.Contains(msg, "(and 3 more)") {
		t.Errorf("remainder count missing: %s", msg)
	}
	if strings.Count(msg, "line") != 5 {
		t.Errorf("want 5 surfaced failures: %s", msg)
	}
}
