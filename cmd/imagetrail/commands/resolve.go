package commands

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/DrSkyle/imagetrail/internal/webhook"
	"github.com/DrSkyle/imagetrail/pkg/gcp"
	"github.com/DrSkyle/imagetrail/pkg/lineage"
)

var applyLabels bool

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(22)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// ResolveCmd walks one resource's lineage from the command line.
var ResolveCmd = &cobra.Command{
	Use:   "resolve <resource-path>",
	Short: "Resolve the true origin of a disk, image, or snapshot",
	Long: `Walks the provenance chain of the named resource and prints the earliest
readable ancestor.

Example:
  imagetrail resolve projects/p1/zones/us-central1-a/disks/d1
  imagetrail resolve projects/p2/global/images/img-old
  imagetrail resolve --apply projects/p1/zones/us-central1-a/disks/d1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		start, err := lineage.ParseAnyPath(args[0])
		if err != nil {
			return err
		}
		if applyLabels && start.Kind != lineage.KindDisk {
			return fmt.Errorf("--apply labels the named resource directly and only supports disks")
		}

		var compute webhook.Compute
		if config.MockMode {
			compute = gcp.NewDemoMock()
		} else {
			client, err := gcp.NewClient(ctx)
			if err != nil {
				return err
			}
			compute = client
		}

		resolver := lineage.NewResolver(compute, lineage.WithMaxHops(config.MaxHops))
		res, err := resolver.Resolve(ctx, start)
		if err != nil {
			return err
		}

		// The CSPM webhook receives the fingerprint in the payload; here it
		// has to come from the disk itself.
		fingerprint := ""
		if applyLabels {
			disk, err := compute.GetDisk(ctx, start.Project, start.Zone, start.Name)
			if err != nil {
				return fmt.Errorf("reading label fingerprint: %w", err)
			}
			fingerprint = disk.LabelFingerprint
		}

		set, err := lineage.BuildLabelSet(res.Record, fingerprint)
		if err != nil {
			return err
		}

		printResolution(start, res, set)

		if applyLabels {
			if err := compute.SetDiskLabels(ctx, start.Project, start.Zone, start.Name, set.Labels(), set.Fingerprint); err != nil {
				return err
			}
			fmt.Printf("\nLabels applied to %s/%s/%s\n", start.Project, start.Zone, start.Name)
		}
		return nil
	},
}

func printResolution(start lineage.Reference, res *lineage.Result, set *lineage.LabelSet) {
	fmt.Println(titleStyle.Render("Origin of " + start.Name))
	row := func(k, v string) {
		fmt.Println(keyStyle.Render(k) + v)
	}
	row("source name", set.Name)
	row("source project", set.Project)
	row("source kind", string(res.Record.Kind))
	row("created (epoch)", strconv.FormatInt(set.CreatedEpoch, 10))
	row("hops", strconv.Itoa(res.Hops))
	if set.Deprecated {
		row("deprecated", "yes")
	}
	if res.Truncated() {
		fmt.Println(warnStyle.Render("chain truncated: an ancestor image was not readable"))
	}
}

func init() {
	ResolveCmd.Flags().BoolVar(&applyLabels, "apply", false, "Write the resolved labels back to the disk")
}
