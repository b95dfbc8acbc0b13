package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	"github.com/praxislabs/vocalis/pkg/archive"
	"github.com/praxislabs/vocalis/pkg/blob"
	"github.com/praxislabs/vocalis/pkg/cli"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect, export and delete archived sessions",
	Long: `Inspect, export and delete archived sessions.

Finished sessions are archived under ~/.vocalis/archive. Transcripts
can be exported to a local directory or to an S3-compatible bucket.`,
}

// openArchive opens the on-disk session archive under ~/.vocalis.
func openArchive() (*archive.Store, error) {
	paths, err := cli.NewPaths()
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureArchiveDir(); err != nil {
		return nil, err
	}
	return archive.Open(archive.Options{Dir: paths.ArchiveDir()})
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchive()
		if err != nil {
			return err
		}
		defer store.Close()

		if outputJSON {
			var records []*archive.Record
			for rec, err := range store.List(cmd.Context()) {
				if err != nil {
					cli.PrintWarning("skipping unreadable record: %v", err)
					continue
				}
				records = append(records, rec)
			}
			return outputResult(records)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tSCENARIO\tSTARTED\tENTRIES")
		count := 0
		for rec, err := range store.List(cmd.Context()) {
			if err != nil {
				cli.PrintWarning("skipping unreadable record: %v", err)
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
				rec.ID, rec.Kind, rec.ScenarioID,
				rec.StartedAt.Time().Format("2006-01-02 15:04:05"),
				len(rec.Entries))
			count++
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if count == 0 {
			cli.PrintInfo("No archived sessions")
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an archived session",
	Long: `Show an archived session record.

With --jq the record is filtered through a jq expression first:

  vocalis sessions show 2f9c... --jq '.entries[].text'
  vocalis sessions show 2f9c... --jq '[.entries[] | select(.speaker == "user")]'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchive()
		if err != nil {
			return err
		}
		defer store.Close()

		rec, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		jqExpr, _ := cmd.Flags().GetString("jq")
		if jqExpr == "" {
			return outputResult(rec)
		}

		query, err := gojq.Parse(jqExpr)
		if err != nil {
			return fmt.Errorf("invalid jq expression: %w", err)
		}

		// gojq operates on the generic JSON representation.
		raw, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return err
		}

		iter := query.Run(value)
		for {
			v, ok := iter.Next()
			if !ok {
				break
			}
			if err, ok := v.(error); ok {
				return fmt.Errorf("jq evaluation failed: %w", err)
			}
			out, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
		}
		return nil
	},
}

var sessionsExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export an archived session transcript",
	Long: `Export an archived session transcript as JSON plus a readable
text rendering.

By default the artifacts are written under ~/.vocalis/exports. With
--bucket it is uploaded to an S3-compatible object store instead;
credentials are read from the standard AWS environment variables.

Example:
  vocalis sessions export 2f9c...
  vocalis sessions export 2f9c... --to /tmp/transcripts
  vocalis sessions export 2f9c... --bucket transcripts --region eu-west-3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchive()
		if err != nil {
			return err
		}
		defer store.Close()

		rec, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		dest, err := buildExportStore(cmd)
		if err != nil {
			return err
		}

		path, size, err := archive.Export(cmd.Context(), dest, rec)
		if err != nil {
			return err
		}

		cli.PrintSuccess("Exported %s (%s)", path, cli.FormatBytes(int64(size)))
		return nil
	},
}

// buildExportStore picks the export destination: an S3 bucket when
// --bucket is set, otherwise a local directory.
func buildExportStore(cmd *cobra.Command) (blob.Store, error) {
	bucket, _ := cmd.Flags().GetString("bucket")
	if bucket != "" {
		prefix, _ := cmd.Flags().GetString("prefix")
		region, _ := cmd.Flags().GetString("region")
		endpoint, _ := cmd.Flags().GetString("endpoint")
		return blob.NewS3(newS3Client(region, endpoint), bucket, prefix), nil
	}

	to, _ := cmd.Flags().GetString("to")
	if to == "" {
		paths, err := cli.NewPaths()
		if err != nil {
			return nil, err
		}
		if err := paths.EnsureExportDir(); err != nil {
			return nil, err
		}
		to = paths.ExportDir()
	}
	return blob.NewDir(to)
}

// newS3Client builds an S3 client from the standard AWS environment
// variables. A custom endpoint enables path-style addressing for
// S3-compatible stores like MinIO.
func newS3Client(region, endpoint string) *s3.Client {
	opts := s3.Options{
		Region: region,
		Credentials: aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
				SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
				SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			}, nil
		}),
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an archived session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchive()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Session %q deleted", args[0])
		return nil
	},
}

func init() {
	sessionsShowCmd.Flags().String("jq", "", "filter the record through a jq expression")

	sessionsExportCmd.Flags().String("to", "", "export directory (default: ~/.vocalis/exports)")
	sessionsExportCmd.Flags().String("bucket", "", "export to this S3 bucket instead of a directory")
	sessionsExportCmd.Flags().String("prefix", "", "key prefix inside the bucket")
	sessionsExportCmd.Flags().String("region", "", "bucket region")
	sessionsExportCmd.Flags().String("endpoint", "", "custom S3 endpoint for compatible stores")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsExportCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}
