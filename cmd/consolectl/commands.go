package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/adminconsole/internal/observability/logger"
	"github.com/dropDatabas3/adminconsole/internal/post"
)

func newRootCmd(out io.Writer) *cobra.Command {
	o := &options{
		BaseURL:  envOr("CONSOLECTL_BACKEND_URL", "http://localhost:48080"),
		TenantID: envOr("CONSOLECTL_TENANT_ID", ""),
		Username: envOr("CONSOLECTL_USERNAME", ""),
		Password: envOr("CONSOLECTL_PASSWORD", ""),
		Locale:   envOr("CONSOLECTL_LOCALE", "en-US"),
		Out:      envOr("CONSOLECTL_OUT", "text"),
		Timeout:  30 * time.Second,
	}

	root := &cobra.Command{
		Use:           "consolectl",
		Short:         "CLI de la consola admin (login, diccionarios, puestos)",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if o.Out != "json" && o.Out != "text" {
				return fmt.Errorf("--out inválido: %q (json|text)", o.Out)
			}
			logger.Init(logger.Config{Env: envOr("CONSOLECTL_LOG_ENV", "dev"), Level: envOr("CONSOLECTL_LOG_LEVEL", "warn")})
			return nil
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&o.BaseURL, "backend-url", o.BaseURL, "URL base del backend admin (env CONSOLECTL_BACKEND_URL)")
	pf.StringVar(&o.TenantID, "tenant-id", o.TenantID, "Tenant (env CONSOLECTL_TENANT_ID)")
	pf.StringVar(&o.Username, "username", o.Username, "Usuario (env CONSOLECTL_USERNAME)")
	pf.StringVar(&o.Password, "password", o.Password, "Contraseña (env CONSOLECTL_PASSWORD)")
	pf.StringVar(&o.Locale, "locale", o.Locale, "Locale de los mensajes: en-US|zh-CN")
	pf.StringVar(&o.Out, "out", o.Out, "Formato de salida: json|text")
	pf.DurationVar(&o.Timeout, "timeout", o.Timeout, "Timeout por request")

	root.AddCommand(newLoginCmd(o), newDictCmd(o), newPostsCmd(o))
	return root
}

func newLoginCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Login y resumen de permisos del usuario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, cmd.OutOrStdout(), o)
			if err != nil {
				return err
			}
			defer s.close(ctx)

			s.notices()
			info := s.res.PermissionInfo
			nav, _ := s.ws.Navigator.TakePending()
			if o.Out == "json" {
				return s.print(map[string]any{
					"permissionInfo": info,
					"navigation":     nav,
				})
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "user:        %s (%s)\n", info.User.DisplayName(), info.User.Username)
			fmt.Fprintf(w, "home:        %s\n", nav.FullPath())
			fmt.Fprintf(w, "permissions: %s\n", strings.Join(s.ws.Access.AccessCodes(), ", "))
			for _, r := range info.Roles {
				fmt.Fprintf(w, "role:        %s (%s)\n", r.Name, r.Code)
			}
			return nil
		},
	}
}

func newDictCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dict [type] [value]",
		Short: "Lista tipos de diccionario, las entradas de un tipo o una entrada",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, cmd.OutOrStdout(), o)
			if err != nil {
				return err
			}
			defer s.close(ctx)
			if err := s.waitDict(ctx); err != nil {
				return fmt.Errorf("dict: %w", err)
			}
			d := s.dict
			w := cmd.OutOrStdout()

			switch len(args) {
			case 0:
				types := d.Types()
				if o.Out == "json" {
					return s.print(map[string]any{"types": types})
				}
				for _, t := range types {
					fmt.Fprintln(w, t)
				}
			case 1:
				entries, ok := d.Get(args[0])
				if !ok {
					return fmt.Errorf("tipo de diccionario no encontrado: %s", args[0])
				}
				if o.Out == "json" {
					return s.print(entries)
				}
				tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
				fmt.Fprintln(tw, "VALUE\tLABEL\tCOLOR")
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Value, e.Label, e.ColorType)
				}
				return tw.Flush()
			default:
				e, ok := d.Lookup(args[0], args[1])
				if !ok {
					return fmt.Errorf("entrada no encontrada: %s/%s", args[0], args[1])
				}
				if o.Out == "json" {
					return s.print(e)
				}
				fmt.Fprintln(w, e.Label)
			}
			return nil
		},
	}
}

func newPostsCmd(o *options) *cobra.Command {
	postsCmd := &cobra.Command{Use: "posts", Short: "Operaciones sobre puestos"}

	var page post.PageParam
	var status int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Listado paginado de puestos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, cmd.OutOrStdout(), o)
			if err != nil {
				return err
			}
			defer s.close(ctx)
			// las etiquetas de estado salen del diccionario
			if err := s.waitDict(ctx); err != nil {
				return fmt.Errorf("dict: %w", err)
			}

			q := page
			if cmd.Flags().Changed("status") {
				q.Status = &status
			}
			res, err := s.ws.Posts.List(ctx, q)
			if err != nil {
				return err
			}
			if o.Out == "json" {
				return s.print(res)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCODE\tNAME\tSORT\tSTATUS")
			for _, r := range res.List {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", r.ID, r.Code, r.Name, r.Sort, r.StatusLabel)
			}
			fmt.Fprintf(tw, "total: %d\n", res.Total)
			return tw.Flush()
		},
	}
	listCmd.Flags().IntVar(&page.PageNo, "page", 1, "Número de página")
	listCmd.Flags().IntVar(&page.PageSize, "size", 10, "Tamaño de página")
	listCmd.Flags().StringVar(&page.Name, "name", "", "Filtro por nombre")
	listCmd.Flags().StringVar(&page.Code, "code", "", "Filtro por código")
	listCmd.Flags().IntVar(&status, "status", 0, "Filtro por estado (0 habilitado, 1 deshabilitado)")

	postsCmd.AddCommand(listCmd)
	return postsCmd
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
