package services

import (
	"regexp"

	"github.com/nurfahmi/wa-gateway/internal/repo"
	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
)

var templateVarPattern = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// RenderTemplate substitutes {{variable}} placeholders with the given
// values. Placeholders without a value are left intact so the gap is
// visible in the delivered message.
func RenderTemplate(content string, vars map[string]string) string {
	return templateVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		name := templateVarPattern.FindStringSubmatch(match)[1]
		if value, ok := vars[name]; ok {
			return value
		}
		return match
	})
}

// ExtractTemplateVariables lists the distinct placeholder names in a
// template body, in order of first appearance
func ExtractTemplateVariables(content string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, match := range templateVarPattern.FindAllStringSubmatch(content, -1) {
		if !seen[match[1]] {
			seen[match[1]] = true
			names = append(names, match[1])
		}
	}
	return names
}

// TemplateService manages reusable message templates
type TemplateService struct {
	templateRepo *repo.TemplateRepository
}

// NewTemplateService creates a new template service
func NewTemplateService(templateRepo *repo.TemplateRepository) *TemplateService {
	return &TemplateService{templateRepo: templateRepo}
}

// Create stores a template, deriving its variable list from the body
func (s *TemplateService) Create(template *models.MessageTemplate) error {
	template.Variables = ExtractTemplateVariables(template.Content)
	return s.templateRepo.Create(template)
}

// Update updates a template, re-deriving its variable list
func (s *TemplateService) Update(template *models.MessageTemplate) error {
	template.Variables = ExtractTemplateVariables(template.Content)
	return s.templateRepo.Update(template)
}

// Render resolves a template by ID and fills in the given variables,
// bumping its usage counter
func (s *TemplateService) Render(id, workspaceID uuid.UUID, vars map[string]string) (string, error) {
	template, err := s.templateRepo.GetByID(id, workspaceID)
	if err != nil {
		return "", err
	}

	rendered := RenderTemplate(template.Content, vars)
	if err := s.templateRepo.IncrementUsage(template.ID); err != nil {
		return rendered, err
	}
	return rendered, nil
}
