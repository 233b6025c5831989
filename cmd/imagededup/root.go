package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var flagValues options
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "imagededup",
		Short:         "Remove perceptually duplicate images, keeping the best copy",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, _, _, err := loadOptions(configFlag)
			if err != nil {
				return err
			}
			overlayFlags(&opts, cmd.Flags(), flagValues)
			return run(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	defaults := defaultOptions()
	flags := rootCmd.Flags()
	flags.StringVarP(&flagValues.Folder, "folder", "F", defaults.Folder, "Folder to scan for duplicates")
	flags.StringSliceVarP(&flagValues.PriorityList, "priority-list", "P", nil, "Folders in rising priority order; later entries win ties")
	flags.BoolVar(&flagValues.NonRecursive, "non-recursive", false, "Only scan the top level of the folder")
	flags.BoolVarP(&flagValues.PermanentDelete, "permanent-delete", "D", false, "Delete duplicates instead of moving them to the trash")
	flags.StringVarP(&flagValues.Hash, "hash", "H", defaults.Hash, "Hash algorithm: whash, ahash, phash or dhash")
	flags.StringVar(&flagValues.PriorityMatch, "priority-match", defaults.PriorityMatch, "How priority folders match: substring or segment")
	flags.StringVar(&flagValues.TrashDir, "trash-dir", "", "Trash directory (default $XDG_DATA_HOME/Trash)")
	flags.StringVar(&flagValues.Viewer, "viewer", "", "Command used to preview images, e.g. \"feh -.\"")
	flags.BoolVar(&flagValues.SkipTies, "skip-ties", false, "Leave groups that need a manual choice untouched instead of prompting")
	flags.BoolVarP(&flagValues.Verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	return rootCmd
}
