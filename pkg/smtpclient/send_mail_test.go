package smtpclient

import (
	"testing"
)

func TestBuildEmail(t *testing.T) {
	sc := &SmtpClients{servers: SmtpServerList{
		From:    "noreply@broker.example",
		Sender:  "bounces@broker.example",
		ReplyTo: []string{"atendimento@broker.example"},
	}}

	e := sc.buildEmail([]string{"ops@broker.example"}, "Novo formulário", "<p>ok</p>", nil)
	if e.From != "noreply@broker.example" || e.Sender != "bounces@broker.example" {
		t.Errorf("server defaults not applied: from=%q sender=%q", e.From, e.Sender)
	}
	if len(e.ReplyTo) != 1 || e.ReplyTo[0] != "atendimento@broker.example" {
		t.Errorf("replyTo = %v", e.ReplyTo)
	}
	if string(e.HTML) != "<p>ok</p>" || e.Subject != "Novo formulário" {
		t.Errorf("content not carried: subject=%q html=%q", e.Subject, e.HTML)
	}

	e = sc.buildEmail(nil, "", "", &HeaderOverrides{
		From:    "alerts@broker.example",
		ReplyTo: []string{"corretor@broker.example"},
	})
	if e.From != "alerts@broker.example" {
		t.Errorf("from override not applied: %q", e.From)
	}
	if len(e.ReplyTo) != 1 || e.ReplyTo[0] != "corretor@broker.example" {
		t.Errorf("replyTo override not applied: %v", e.ReplyTo)
	}

	e = sc.buildEmail(nil, "", "", &HeaderOverrides{NoReplyTo: true})
	if len(e.ReplyTo) != 0 {
		t.Errorf("noReplyTo must clear replyTo, got %v", e.ReplyTo)
	}
}
