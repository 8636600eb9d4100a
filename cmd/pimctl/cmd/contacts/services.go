package contacts

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/pimctl/cmd/application"
	"github.com/agentstation/pimctl/internal/cmd/output"
	"github.com/agentstation/pimctl/pkg/socials"
)

// ServiceList is printed by the services command.
type ServiceList struct {
	Count    int               `json:"count" yaml:"count"`
	Services []socials.Service `json:"services" yaml:"services"`
}

// TableData implements output.Tabular.
func (l ServiceList) TableData() output.Data {
	rows := make([][]string, 0, len(l.Services))
	for _, s := range l.Services {
		status := ""
		if s.Defunct {
			status = "defunct"
		}
		rows = append(rows, []string{s.Name, s.Domain, strings.Join(s.Aliases, ", "), status})
	}
	return output.Data{Headers: []string{"Service", "Domain", "Aliases", "Status"}, Rows: rows}
}

// NewServicesCommand creates the services command.
func NewServicesCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "services",
		GroupID: "management",
		Short:   "List the social services pimctl knows",
		Long: `Services lists the canonical service names social profiles are normalized
to, with the domain used to spot domain fragments stored as usernames.
Services not listed are still accepted and capitalized.`,
		Example: `  pimctl services -o table`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPrinter(cmd, app)
			services := socials.DefaultRegistry().Services()
			return p.write(ServiceList{Count: len(services), Services: services})
		},
	}
}
