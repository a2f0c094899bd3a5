package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/field-triage/internal/clinical"
	"github.com/danielpatrickdp/field-triage/internal/config"
	"github.com/danielpatrickdp/field-triage/internal/intake"
	"github.com/danielpatrickdp/field-triage/internal/orchestrator"
	"github.com/danielpatrickdp/field-triage/internal/verify"
)

// #region main
func main() {
	configPath := flag.String("config", config.Path(), "path to YAML or JSON settings")
	fallback := flag.Bool("fallback", false, "skip model backends and use templated output only")
	noStore := flag.Bool("no-store", false, "run without patient lookup or audit log")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		log.Printf("config: %v (continuing with defaults)", err)
	}
	if *fallback {
		settings.ForceFallback()
	}

	rt, err := config.OpenRuntime(settings, !*noStore)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	defer rt.Close()

	p := &prompter{scanner: bufio.NewScanner(os.Stdin)}

	fmt.Println("Field Triage Assistant ready.")
	fmt.Printf("  Location: %s | Environment: %s\n", settings.LocationLabel, settings.Env())
	fmt.Println("Type 'exit' at the symptom prompt to stop.")
	fmt.Println()

	base := p.identity()
	base.Environment = settings.Env()
	base.CameraEnabled = p.yesNo("Enable camera checks and abrasion scan?", true)
	if base.CameraEnabled && p.yesNo("Provide camera estimate for identity cross-check?", false) {
		base.CameraEstimate = verify.Estimate{
			AgeYears: p.optionalInt("Camera estimated age: "),
			Sex:      p.ask("Camera estimated sex: "),
		}
	}
	base.ForceEscalation = p.yesNo("Always consult the clinical model?", false)

	for {
		message := p.symptoms()
		if isExit(message) || p.closed {
			fmt.Println("Session ended.")
			return
		}

		sess := base
		sess.Message = message
		sess.Duration = p.ask("Assistant: How long have these symptoms been present? (optional): ")
		sess.ScanImagePath = p.ask("Assistant: Optional scan image path/URL (enter to skip): ")
		if sess.Duration != "" {
			sess.Answers = map[string]string{intake.FieldDuration: sess.Duration}
		}
		if base.CameraEnabled && base.CameraEstimate.Present() {
			sess.VerificationAnswer = p.ask("Assistant: Camera mismatch may exist. Please confirm identity details: ")
		}

		ctx := context.Background()
		out := rt.Orchestrator.Run(ctx, sess)
		printOutput(out)
		followups(ctx, p, rt.Orchestrator, out)

		if !p.yesNo("\nStart another case?", false) {
			fmt.Println("Session finished.")
			return
		}
	}
}

// #endregion main

// #region output
func printOutput(out orchestrator.RunOutput) {
	fmt.Printf("\nCase: %s\n", out.CaseID)
	fmt.Println("\nAssistant: Verification notes")
	for _, note := range out.VerificationNotes {
		fmt.Printf("- %s\n", note)
	}

	fmt.Println("\nAssistant: Recommendation summary")
	fmt.Printf("- Urgency: %s\n", out.Triage.Urgency)
	fmt.Printf("- Next step: %s\n", out.Triage.RecommendedNextStep)
	if out.Triage.GuardrailTriggered {
		fmt.Println("- Guardrail override: yes")
		for _, reason := range out.Triage.GuardrailReasons {
			fmt.Printf("  * %s\n", reason)
		}
	}
	for _, g := range out.Triage.EnvironmentGuidance {
		fmt.Printf("- %s\n", g)
	}

	fmt.Println("\nAssistant: Conversation")
	for _, line := range out.Dialogue {
		fmt.Println(line)
	}
}

func followups(ctx context.Context, p *prompter, o *orchestrator.Orchestrator, out orchestrator.RunOutput) {
	fmt.Println("\nAssistant: Ask follow-up questions if you want more detail (enter to finish).")
	for {
		q := p.ask("You (follow-up): ")
		if q == "" || p.closed {
			return
		}
		fmt.Println(o.AnswerFollowup(ctx, q, out))
	}
}

// #endregion output

// #region prompts
type prompter struct {
	scanner *bufio.Scanner
	closed  bool
}

func (p *prompter) ask(prompt string) string {
	if p.closed {
		return ""
	}
	fmt.Print(prompt)
	if !p.scanner.Scan() {
		p.closed = true
		fmt.Println()
		return ""
	}
	return strings.TrimSpace(p.scanner.Text())
}

func (p *prompter) optionalInt(prompt string) *int {
	raw := p.ask(prompt)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Println("Invalid number, leaving empty.")
		return nil
	}
	return &v
}

func (p *prompter) yesNo(prompt string, defaultYes bool) bool {
	suffix := "[y/N]"
	if defaultYes {
		suffix = "[Y/n]"
	}
	raw := strings.ToLower(p.ask(prompt + " " + suffix + " "))
	if raw == "" {
		return defaultYes
	}
	return raw == "y" || raw == "yes"
}

func (p *prompter) identity() orchestrator.Session {
	var sess orchestrator.Session
	sess.Identity = clinical.Identity{
		FirstName: p.ask("First name: "),
		LastName:  p.ask("Last name: "),
		IDNumber:  p.ask("ID number: "),
		AgeYears:  p.optionalInt("Age: "),
		Sex:       p.ask("Sex: "),
	}
	return sess
}

// symptoms collects a primary complaint plus any extra symptoms.
func (p *prompter) symptoms() string {
	fmt.Println("\nAssistant: Please describe your main symptom.")
	primary := p.ask("You: ")
	if isExit(primary) {
		return primary
	}
	var items []string
	if primary != "" {
		items = append(items, primary)
	}
	for {
		extra := p.ask("Assistant: Any other symptom? (enter to continue): ")
		if extra == "" {
			break
		}
		items = append(items, extra)
	}
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return "Symptoms: " + strings.Join(items, "; ")
}

func isExit(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "exit" || s == "quit"
}

// #endregion prompts
