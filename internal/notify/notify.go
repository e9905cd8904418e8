package notify

import (
	"html/template"
	"path/filepath"
	"time"

	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/config"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

const simulationFinishedTemplate = "simulation_finished_email.html"

// Mailer 在异步模拟结束后向提交者发送通知邮件
type Mailer struct {
	client *mail.Client
	from   string
	tmpl   *template.Template
}

// Enabled 判断是否配置了 SMTP 服务器
func Enabled(cfg *config.Config) bool {
	return cfg.Email.SMTP.Host != "" && cfg.Email.SMTP.Username != ""
}

func ParseTemplate(dir string) (*template.Template, error) {
	return template.ParseFiles(filepath.Join(dir, simulationFinishedTemplate))
}

func NewMailer(cfg *config.Config) (*Mailer, error) {
	tmpl, err := ParseTemplate(cfg.Email.TemplateDir)
	if err != nil {
		return nil, err
	}

	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
		mail.WithTimeout(time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second),
	)
	if err != nil {
		return nil, err
	}

	return &Mailer{
		client: client,
		from:   cfg.Email.SMTP.Username,
		tmpl:   tmpl,
	}, nil
}

func MailDataOf(run *domain.SimulationRun) domain.SimulationFinishedMailData {
	return domain.SimulationFinishedMailData{
		RunID:        run.ID.String(),
		CostMatrixID: run.CostMatrixID,
		Status:       string(run.Status),
		BestScore:    run.BestScore,
		Makespan:     run.Makespan,
		Duration:     run.Duration.String(),
		ErrorMessage: run.ErrorMessage,
	}
}

// BuildMessage 构建通知邮件
func BuildMessage(from string, tmpl *template.Template, run *domain.SimulationRun) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, err
	}
	if err := msg.To(run.NotifyEmail); err != nil {
		return nil, err
	}
	if err := msg.SetBodyHTMLTemplate(tmpl, MailDataOf(run)); err != nil {
		return nil, err
	}

	switch run.Status {
	case domain.SimulationStatusSucceeded:
		msg.Subject("Makespan 调度 - 模拟已完成")
	default:
		msg.Subject("Makespan 调度 - 模拟失败")
	}

	return msg, nil
}

func (m *Mailer) Notify(run *domain.SimulationRun) error {
	msg, err := BuildMessage(m.from, m.tmpl, run)
	if err != nil {
		return err
	}

	return m.client.DialAndSend(msg)
}

func (m *Mailer) Close() error {
	return m.client.Close()
}
