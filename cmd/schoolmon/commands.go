package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"schoolmon/internal/clients"
	schoolmongrpc "schoolmon/internal/grpc"
	"schoolmon/internal/i18n"
	"schoolmon/internal/model"
	"schoolmon/internal/qr"
	"schoolmon/internal/tui"
	"schoolmon/internal/view"
)

// cliNav ignores navigation; commands print results and exit.
type cliNav struct{}

func (cliNav) ToLogin()        {}
func (cliNav) ToSchools()      {}
func (cliNav) ToSchool(string) {}

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			in := bufio.NewReader(cmd.InOrStdin())
			username, _ := cmd.Flags().GetString("username")
			if username == "" {
				fmt.Fprint(cmd.OutOrStdout(), i18n.T("auth.username")+": ")
				if username, err = readLine(in); err != nil {
					return err
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), i18n.T("auth.password")+": ")
			password, err := readPassword(in)
			fmt.Fprintln(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			login := view.NewLogin(a.client, cliNav{}, a.tokens)
			if err := login.Submit(cmd.Context(), username, password); err != nil {
				return err
			}
			if msg := login.Snapshot().Err; msg != "" {
				return errors.New(msg)
			}
			user := a.client.Session().User()
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", i18n.T("auth.loginSuccess"), user.Username)
			return nil
		},
	}
	cmd.Flags().StringP("username", "u", "", "account name")
	return cmd
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword reads without echo from a terminal and falls back to a plain
// line when stdin is piped.
func readPassword(r *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	return readLine(r)
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			login := view.NewLogin(a.client, cliNav{}, a.tokens)
			if err := login.Logout(cmd.Context()); err != nil && !model.IsAuthRequired(err) {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("auth.loggedOut"))
			return nil
		},
	}
}

func newSchoolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schools",
		Short: "List schools one page at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}
			page, _ := cmd.Flags().GetInt("page")
			limit, _ := cmd.Flags().GetInt("limit")
			all, _ := cmd.Flags().GetBool("all")
			if limit <= 0 {
				limit = viper.GetInt("page_size")
			}

			var schools []model.School
			hasMore := false
			if all {
				list := view.NewSchoolList(a.client, cliNav{}, limit)
				for list.Snapshot().HasMore {
					if err := list.FetchNext(cmd.Context()); err != nil {
						return a.observe(err)
					}
				}
				schools = list.Snapshot().Items
			} else {
				resp, err := a.client.LoadSchools(cmd.Context(), page, limit)
				if err != nil {
					return a.observe(err)
				}
				schools, hasMore = resp.Data, resp.HasMore
			}

			out := cmd.OutOrStdout()
			if len(schools) == 0 {
				fmt.Fprintln(out, i18n.T("schools.noSchools"))
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tADDRESS\tPHONE")
			for _, s := range schools {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Address, s.PhoneNumber)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if hasMore {
				fmt.Fprintf(out, "\n%s %d: --page %d\n", i18n.T("pagination.page"), page, page+1)
			} else {
				fmt.Fprintln(out, "\n"+i18n.T("pagination.noMoreItems"))
			}
			return nil
		},
	}
	cmd.Flags().Int("page", 1, "page to show")
	cmd.Flags().Int("limit", 0, "schools per page (default from page_size)")
	cmd.Flags().Bool("all", false, "fetch every page")
	return cmd
}

func newSchoolCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "school <id>",
		Short: "Show a school with its devices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}
			detail := view.NewSchoolDetail(a.client, cliNav{})
			if err := detail.Load(cmd.Context(), args[0]); err != nil {
				return a.observe(err)
			}
			state := detail.Snapshot()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n%s\n%s\n\n", state.School.Name, state.School.Address, state.School.PhoneNumber)

			stats := detail.Stats()
			fmt.Fprintf(out, "%s: %d  %s: %d  %s: %d  %s: %d\n\n",
				i18n.T("devices.totalDevices"), stats.Total,
				i18n.T("devices.healthyDevices"), stats.Healthy,
				i18n.T("devices.warningDevices"), stats.Warning,
				i18n.T("devices.criticalDevices"), stats.Critical)

			if len(state.Devices) == 0 {
				fmt.Fprintln(out, i18n.T("devices.noDevices"))
				return nil
			}
			now := time.Now()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTATUS\tLAST SEEN")
			for _, d := range state.Devices {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.ID, d.Name, tui.StatusLabel(d.Status), tui.RelativeTime(now, d.LastUpdated))
			}
			return w.Flush()
		},
	}
}

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [code]",
		Short: "Register a device by its QR code",
		Long: `Submits a device code, either given as an argument or decoded from an
image of the QR code with --image.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, _ := cmd.Flags().GetString("image")
			if (image == "") == (len(args) == 0) {
				return errors.New("pass either a code or --image")
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			flow := view.NewScanFlow(a.client, cliNav{}, nil, "")
			defer flow.Close()
			if image != "" {
				detections, err := qr.DecodeFile(image)
				if err != nil {
					return fmt.Errorf("%s: %w", i18n.T("qr.noCodeInImage"), err)
				}
				flow.StartScanning()
				err = flow.OnDetect(cmd.Context(), detections)
				if err != nil {
					return a.observe(err)
				}
			} else if err := flow.Submit(cmd.Context(), args[0]); err != nil {
				return a.observe(err)
			}

			state := flow.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n%s: %s\n", i18n.T("qr.success"), i18n.T("qr.successMessage"), i18n.T("devices.deviceId"), state.DeviceID)
			return nil
		},
	}
	cmd.Flags().String("image", "", "image file holding the QR code")
	return cmd
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the server through its gRPC health service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("grpc")
			if addr == "" {
				addr = viper.GetString("grpc")
			}
			token, _ := cmd.Flags().GetString("service-token")
			if token == "" {
				token = viper.GetString("service_token")
			}

			health, err := clients.NewHealth(cmd.Context(), addr, token, 5*time.Second)
			if err != nil {
				return fmt.Errorf("grpc dial failed: %w", err)
			}
			defer health.Close()

			status, err := health.Check(cmd.Context(), schoolmongrpc.ServiceName)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", addr, status)
			if status != healthpb.HealthCheckResponse_SERVING {
				return fmt.Errorf("%s is %s", schoolmongrpc.ServiceName, status)
			}
			return nil
		},
	}
	cmd.Flags().String("grpc", "", "gRPC address of the server (default from config)")
	cmd.Flags().String("service-token", "", "x-service-token for guarded methods")
	return cmd
}

func newTUICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE:  runTUI,
	}
	cmd.Flags().String("camera", "", "video device probed by the scan screen (default "+qr.DefaultDevicePath+")")
	return cmd
}
